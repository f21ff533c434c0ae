package segment

import "errors"

// PixelType identifies the numeric type of the samples in a raster.
type PixelType int

// The closed set of recognised pixel types. Complex and colour variants are
// recognised by the dispatch but unsupported in the segmentation path.
const (
	PixelNone PixelType = iota
	PixelInt8
	PixelUint8
	PixelInt16
	PixelUint16
	PixelInt32
	PixelUint32
	PixelInt64
	PixelUint64
	PixelFloat32
	PixelFloat64
	PixelComplex64
	PixelComplex128
	PixelRGB
	PixelRGBA
)

// String returns the name of the pixel type.
func (t PixelType) String() string {
	switch t {
	case PixelNone:
		return "none"
	case PixelInt8:
		return "int8"
	case PixelUint8:
		return "uint8"
	case PixelInt16:
		return "int16"
	case PixelUint16:
		return "uint16"
	case PixelInt32:
		return "int32"
	case PixelUint32:
		return "uint32"
	case PixelInt64:
		return "int64"
	case PixelUint64:
		return "uint64"
	case PixelFloat32:
		return "float32"
	case PixelFloat64:
		return "float64"
	case PixelComplex64:
		return "complex64"
	case PixelComplex128:
		return "complex128"
	case PixelRGB:
		return "rgb"
	case PixelRGBA:
		return "rgba"
	}
	return "invalid"
}

// Link bits. Bit LinkEast of pixel (x, y) is set when pixel (x+1, y) belongs
// to the same region, and symmetrically for the other directions: the
// builder never emits a one-sided link.
const (
	LinkEast  uint8 = 1 // neighbour at (x+1, y)
	LinkWest  uint8 = 2 // neighbour at (x-1, y)
	LinkNorth uint8 = 4 // neighbour at (x, y+1)
	LinkSouth uint8 = 8 // neighbour at (x, y-1)

	// linkOwned marks a pixel already claimed by a region during
	// extraction. It never appears in emitted points.
	linkOwned uint8 = 16
)

// Sentinel errors. Fallible operations wrap one of these; test with
// errors.Is.
var (
	// ErrInvalidArgument reports a nil buffer, non-positive dimension,
	// stride smaller than width, out-of-range index, or unsupported pixel
	// type.
	ErrInvalidArgument = errors.New("segment: invalid argument")

	// ErrNoMemory reports an allocation failure inside a builder.
	ErrNoMemory = errors.New("segment: out of memory")

	// ErrUnexpected reports an internal inconsistency. It does not fire on
	// valid inputs.
	ErrUnexpected = errors.New("segment: internal inconsistency")
)

// Point is one pixel of a segment: its coordinates and the four-direction
// link mask it carried in the link map.
type Point struct {
	X, Y int16
	Link uint8
}

// Segment is a maximal connected region of pixels. Segments are created by
// New or Select and are read-only afterwards.
type Segment struct {
	// Points lists the pixels of the segment in flood-fill order. It is a
	// view into the owning Segmentation's shared buffer and is valid for
	// the lifetime of the handle.
	Points []Point

	// Index is the position of the segment within its Segmentation.
	Index int

	// Bounding box, inclusive on both ends.
	XMin, XMax, YMin, YMax int

	// Width and Height of the bounding box.
	Width, Height int

	// Centre of the bounding box.
	XCen, YCen float64
}

// Count returns the number of pixels in the segment.
func (s *Segment) Count() int { return len(s.Points) }
