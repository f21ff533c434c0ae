package segment

import (
	"fmt"
	"math"
)

// Numeric constraints for the generic link builder.
type signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type integer interface {
	signed | unsigned
}

type float interface {
	~float32 | ~float64
}

type pixel interface {
	integer | float
}

// BuildLinks fills the link bitmap for a raster of samples.
//
// For every pixel, the bit LinkEast is set iff the neighbour at (x+1, y) is
// in range and its sample differs from the pixel's own sample by at most
// threshold, and symmetrically for LinkWest, LinkNorth and LinkSouth. The
// builder writes both endpoints of every link, so the resulting bitmap is
// always symmetric.
//
// Parameters:
//   - data: the sample buffer, a []T slice whose element type T matches typ.
//   - typ: the pixel type tag. Complex and colour tags are rejected.
//   - imgOffset, imgStride: position of the first sample and spacing
//     between rows in data. imgStride must be at least width.
//   - lnk: the destination bitmap, laid out with lnkOffset and lnkStride
//     the same way.
//   - width, height: dimensions of the raster; both must be positive.
//   - threshold: maximum absolute sample difference for two neighbours to
//     belong to the same region. A threshold that truncates to zero in the
//     pixel's numeric space selects exact equality, which also gives
//     integer rasters exact-match semantics.
//
// Returns nil on success, or an error wrapping ErrInvalidArgument for nil
// or undersized buffers, bad dimensions, or an unsupported pixel type.
func BuildLinks(data any, typ PixelType,
	imgOffset, imgStride int,
	lnk []uint8, lnkOffset, lnkStride, width, height int,
	threshold float64) error {

	builder, ok := linkBuilders[typ]
	if !ok {
		return fmt.Errorf("%w: unsupported pixel type %v", ErrInvalidArgument, typ)
	}
	if threshold < 0 {
		threshold = 0
	}
	return builder(data, imgOffset, imgStride, lnk, lnkOffset, lnkStride, width, height, threshold)
}

// linkBuilder is one entry of the runtime dispatch table: it checks the
// dynamic type of the sample buffer and runs the generic builder with the
// similarity predicate of its pixel type.
type linkBuilder func(data any, imgOffset, imgStride int,
	lnk []uint8, lnkOffset, lnkStride, width, height int,
	threshold float64) error

var linkBuilders = map[PixelType]linkBuilder{
	PixelInt8:    intLinkBuilder[int8],
	PixelUint8:   intLinkBuilder[uint8],
	PixelInt16:   intLinkBuilder[int16],
	PixelUint16:  intLinkBuilder[uint16],
	PixelInt32:   intLinkBuilder[int32],
	PixelUint32:  intLinkBuilder[uint32],
	PixelInt64:   intLinkBuilder[int64],
	PixelUint64:  intLinkBuilder[uint64],
	PixelFloat32: floatLinkBuilder[float32],
	PixelFloat64: floatLinkBuilder[float64],
}

func intLinkBuilder[T integer](data any, imgOffset, imgStride int,
	lnk []uint8, lnkOffset, lnkStride, width, height int,
	threshold float64) error {

	pix, ok := data.([]T)
	if !ok {
		return fmt.Errorf("%w: sample buffer is %T, want []%s",
			ErrInvalidArgument, data, pixelName[T]())
	}
	return buildLinks(pix, imgOffset, imgStride, lnk, lnkOffset, lnkStride,
		width, height, integerSimilar[T](threshold))
}

func floatLinkBuilder[T float](data any, imgOffset, imgStride int,
	lnk []uint8, lnkOffset, lnkStride, width, height int,
	threshold float64) error {

	pix, ok := data.([]T)
	if !ok {
		return fmt.Errorf("%w: sample buffer is %T, want []%s",
			ErrInvalidArgument, data, pixelName[T]())
	}
	return buildLinks(pix, imgOffset, imgStride, lnk, lnkOffset, lnkStride,
		width, height, floatSimilar[T](threshold))
}

func pixelName[T pixel]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// integerSimilar returns the tolerance predicate for an integer pixel type,
// or nil to select exact equality. The absolute difference is taken as
// max(a,b)-min(a,b); the subtraction is done modulo 2^64, which yields the
// true magnitude for signed operands as well without overflow.
func integerSimilar[T integer](threshold float64) func(a, b T) bool {
	if threshold < 1 {
		return nil
	}
	if threshold > math.MaxInt64 {
		threshold = math.MaxInt64
	}
	t := uint64(threshold)
	return func(a, b T) bool {
		if a < b {
			a, b = b, a
		}
		return uint64(a)-uint64(b) <= t
	}
}

// floatSimilar returns the tolerance predicate for a floating-point pixel
// type, or nil to select exact equality.
func floatSimilar[T float](threshold float64) func(a, b T) bool {
	t := T(threshold)
	if t == 0 {
		return nil
	}
	return func(a, b T) bool {
		if a >= b {
			return a-b <= t
		}
		return b-a <= t
	}
}

// buildLinks is the type-polymorphic builder core. similar is the tolerance
// predicate, or nil for exact equality.
//
// The traversal visits each row once. Pixel (x, y) with x >= 1 tests the
// pair against its west neighbour, and with y >= 1 against its south
// neighbour, writing both sides of each accepted link; the first row and
// first column only get the lead-in halves of those tests.
func buildLinks[T pixel](pix []T, pixOffset, pixStride int,
	lnk []uint8, lnkOffset, lnkStride, width, height int,
	similar func(a, b T) bool) error {

	if pix == nil || lnk == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidArgument)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	if pixStride < width || lnkStride < width {
		return fmt.Errorf("%w: stride smaller than width", ErrInvalidArgument)
	}
	if pixOffset < 0 || lnkOffset < 0 ||
		pixOffset+(height-1)*pixStride+width > len(pix) ||
		lnkOffset+(height-1)*lnkStride+width > len(lnk) {
		return fmt.Errorf("%w: buffer too small for %dx%d raster", ErrInvalidArgument, width, height)
	}

	same := similar
	if same == nil {
		same = func(a, b T) bool { return a == b }
	}

	// First row (y = 0): horizontal links only.
	img0 := pixOffset
	lnk0 := lnkOffset
	pix0 := pix[img0]
	lnk[lnk0] = 0
	for x := 1; x < width; x++ {
		pix1 := pix0
		pix0 = pix[img0+x]
		if same(pix0, pix1) {
			lnk[lnk0+x-1] |= LinkEast
			lnk[lnk0+x] = LinkWest
		} else {
			lnk[lnk0+x] = 0
		}
	}

	// Remaining rows: each pixel tests its west and south neighbours.
	for y := 1; y < height; y++ {
		img2 := img0
		img0 += pixStride
		lnk2 := lnk0
		lnk0 += lnkStride
		pix0 = pix[img0]
		if same(pix0, pix[img2]) {
			lnk[lnk2] |= LinkNorth
			lnk[lnk0] = LinkSouth
		} else {
			lnk[lnk0] = 0
		}
		for x := 1; x < width; x++ {
			pix1 := pix0
			pix0 = pix[img0+x]
			pix2 := pix[img2+x]
			var bits uint8
			if same(pix0, pix1) {
				lnk[lnk0+x-1] |= LinkEast
				bits = LinkWest
			}
			if same(pix0, pix2) {
				lnk[lnk2+x] |= LinkNorth
				bits |= LinkSouth
			}
			lnk[lnk0+x] = bits
		}
	}
	return nil
}
