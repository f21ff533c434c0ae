package chain

import (
	"errors"
	"fmt"

	"github.com/ironsheep/segment-tools/segment"
)

// Sentinel errors. Fallible operations wrap one of these; test with
// errors.Is.
var (
	// ErrInvalidArgument reports a nil segmentation, a nil destination
	// slice, a length mismatch, or an out-of-range index.
	ErrInvalidArgument = errors.New("chain: invalid argument")

	// ErrUnexpected reports an internal inconsistency in the chain graph.
	// It does not fire on valid inputs.
	ErrUnexpected = errors.New("chain: internal inconsistency")

	// errSingular reports a degenerate linear regression (no spread in
	// abscissa). It never escapes New: the affected chain is dropped.
	errSingular = errors.New("chain: singular regression")
)

// Options are the tuning parameters of the chain builder.
//
// New clamps out-of-range values rather than failing: negative tolerances
// are raised to zero, SRTol is clamped to [0, 1], DRMin and DRMax are
// swapped into order, LMin is raised to 2 and LMax to LMin.
type Options struct {
	// SATol is the absolute tolerance on character height, in pixels.
	SATol float64
	// SRTol is the relative tolerance on character height.
	SRTol float64
	// DRMin is the minimum horizontal spacing between two consecutive
	// characters, relative to their widths.
	DRMin float64
	// DRMax is the maximum horizontal spacing between two consecutive
	// characters, relative to their heights.
	DRMax float64
	// Slope is the maximum tangent of the angle between a chain and the
	// horizontal direction.
	Slope float64
	// AATol is the absolute tolerance, in pixels, on the vertical
	// alignment of a segment with the chain's regression line.
	AATol float64
	// ARTol is the vertical alignment tolerance relative to the mean
	// segment height.
	ARTol float64
	// Prec is the convergence tolerance of the shear fits, in pixels.
	Prec float64
	// LMin is the minimum number of segments in an emitted chain.
	LMin int
	// LMax is the maximum number of segments in an emitted chain.
	LMax int
}

// DefaultOptions returns the tuning parameters suited to printed text lines
// with moderate skew.
func DefaultOptions() Options {
	return Options{
		SATol: 2.0,
		SRTol: 0.05,
		DRMin: 0.4,
		DRMax: 2.5,
		Slope: 0.3,
		AATol: 2.0,
		ARTol: 0.05,
		Prec:  0.05,
		LMin:  3,
		LMax:  10,
	}
}

// clamped returns a copy of o with every parameter forced into its valid
// range.
func (o Options) clamped() Options {
	if o.SATol < 0 {
		o.SATol = 0
	}
	if o.SRTol < 0 {
		o.SRTol = 0
	}
	if o.SRTol > 1 {
		o.SRTol = 1
	}
	if o.DRMin < 0 {
		o.DRMin = 0
	}
	if o.DRMax < 0 {
		o.DRMax = 0
	}
	if o.DRMax < o.DRMin {
		o.DRMin, o.DRMax = o.DRMax, o.DRMin
	}
	if o.Slope < 0 {
		o.Slope = 0
	}
	if o.AATol < 0 {
		o.AATol = 0
	}
	if o.ARTol < 0 {
		o.ARTol = 0
	}
	if o.Prec < 0 {
		o.Prec = 0
	}
	if o.LMin < 2 {
		o.LMin = 2
	}
	if o.LMax < o.LMin {
		o.LMax = o.LMin
	}
	return o
}

// Chain is one emitted chain of segments with its fitted geometry. Chains
// are created by New and are read-only afterwards.
type Chain struct {
	segments []*segment.Segment

	verticalShear   float64
	horizontalShear float64

	// Bounding box of the chain under the fitted affine.
	xmin, xmax, ymin, ymax float64

	// a holds the 2x2 affine applied to pixel coordinates during fitting,
	// starting from the identity: x' = a[0]*x + a[1]*y and
	// y' = a[2]*x + a[3]*y, with a[1] = -horizontalShear and
	// a[2] = -verticalShear.
	a [4]float64
}

// Length returns the number of segments in the chain.
func (c *Chain) Length() int { return len(c.segments) }

// VerticalShear returns the fitted vertical shear.
func (c *Chain) VerticalShear() float64 { return c.verticalShear }

// HorizontalShear returns the fitted horizontal shear.
func (c *Chain) HorizontalShear() float64 { return c.horizontalShear }

// XMin returns the smallest transformed abscissa of the chain's bounding
// box.
func (c *Chain) XMin() float64 { return c.xmin }

// XMax returns the largest transformed abscissa of the chain's bounding
// box.
func (c *Chain) XMax() float64 { return c.xmax }

// YMin returns the smallest transformed ordinate of the chain's bounding
// box.
func (c *Chain) YMin() float64 { return c.ymin }

// YMax returns the largest transformed ordinate of the chain's bounding
// box.
func (c *Chain) YMax() float64 { return c.ymax }

// Affine returns the 2x2 affine used during fitting.
func (c *Chain) Affine() [4]float64 { return c.a }

// Segments fills dst with the indices, in source-segmentation space, of the
// chain's segments in left-to-right order. dst must have Length() elements.
func (c *Chain) Segments(dst []int) error {
	if dst == nil {
		return fmt.Errorf("%w: nil destination", ErrInvalidArgument)
	}
	if len(dst) != len(c.segments) {
		return fmt.Errorf("%w: destination length %d, want %d",
			ErrInvalidArgument, len(dst), len(c.segments))
	}
	for k, s := range c.segments {
		dst[k] = s.Index
	}
	return nil
}
