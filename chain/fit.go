package chain

import (
	"math"

	"github.com/ironsheep/segment-tools/segment"
)

// fitLine computes the line y = ym + alpha*(x - xm) minimising the weighted
// vertical distance to a set of points, from the accumulated sums: sw is
// the sum of weights, swx/swy the weighted coordinate sums, swxx/swxy the
// weighted second-order sums. It reports errSingular when the weights are
// not positive or the abscissa has no spread (a vertical line, possibly
// from rounding).
func fitLine(sw, swx, swy, swxx, swxy float64) (xm, ym, alpha float64, err error) {
	if sw <= 0 {
		return 0, 0, 0, errSingular
	}
	q := 1 / sw
	xm = swx * q
	ym = swy * q
	r := swxx*q - xm*xm
	if r <= 0 {
		return xm, ym, 0, errSingular
	}
	return xm, ym, (swxy*q - xm*ym) / r, nil
}

// shortLine accumulates the regression sums of a sequence of segment
// centres so that one more candidate can be tested cheaply.
type shortLine struct {
	sh, sx, sy, sxx, sxy float64
	segs                 []*segment.Segment
}

func newShortLine(segs []*segment.Segment) shortLine {
	var ln shortLine
	for _, s := range segs {
		x := s.XCen
		y := s.YCen
		ln.sh += float64(s.Height)
		ln.sx += x
		ln.sy += y
		ln.sxx += x * x
		ln.sxy += x * y
	}
	ln.segs = segs
	return ln
}

// accept reports whether sgm is aligned with the line's segments: the
// regression over all centres including sgm must have a slope within
// slope, and every centre must lie within aatol + artol*meanHeight of the
// regression line. Distances are taken relative to the mean position to
// limit rounding error.
func (ln *shortLine) accept(sgm *segment.Segment, slope, aatol, artol float64) bool {
	x := sgm.XCen
	y := sgm.YCen
	h := float64(sgm.Height)
	np1 := float64(len(ln.segs)) + 1

	xm, ym, a, err := fitLine(np1, ln.sx+x, ln.sy+y, ln.sxx+x*x, ln.sxy+x*y)
	if err != nil || math.Abs(a) > slope {
		return false
	}

	hm := (ln.sh + h) / np1
	threshold := aatol + artol*hm

	if math.Abs(a*(x-xm)-(y-ym)) > threshold {
		return false
	}
	for _, s := range ln.segs {
		if math.Abs(a*(s.XCen-xm)-(s.YCen-ym)) > threshold {
			return false
		}
	}
	return true
}

// bbox is an axis-aligned box in transformed coordinates.
type bbox struct {
	xmin, xmax, ymin, ymax float64
}

const interiorMask = segment.LinkEast | segment.LinkWest | segment.LinkNorth | segment.LinkSouth

// transformedBBox returns the bounding box of a segment under the 2x2
// affine a. Only boundary points (link mask not all four directions) can
// move the box; the first point always seeds it. A segment without points
// yields the zero box.
func transformedBBox(s *segment.Segment, a *[4]float64) bbox {
	if s == nil || s.Count() < 1 {
		return bbox{}
	}
	axx, axy, ayx, ayy := a[0], a[1], a[2], a[3]
	px := float64(s.Points[0].X)
	py := float64(s.Points[0].Y)
	x := axx*px + axy*py
	y := ayx*px + ayy*py
	box := bbox{xmin: x, xmax: x, ymin: y, ymax: y}
	for _, p := range s.Points[1:] {
		if p.Link&interiorMask == interiorMask {
			continue
		}
		px = float64(p.X)
		py = float64(p.Y)
		x = axx*px + axy*py
		if x < box.xmin {
			box.xmin = x
		}
		if x > box.xmax {
			box.xmax = x
		}
		y = ayx*px + ayy*py
		if y < box.ymin {
			box.ymin = y
		}
		if y > box.ymax {
			box.ymax = y
		}
	}
	return box
}

// fitVerticalShear adjusts the vertical shear of the chain so that the
// centres of the transformed segment bounding boxes align on a horizontal
// line. Each iteration regresses the box centres, folds the slope into the
// shear and updates a[2]; iteration stops once the residual slope falls
// below prec divided by the lever arm (the chain's width), with a hard cap
// of ten iterations. The first iteration uses the raw integer bounding
// boxes and centres; later ones use the transformed boxes. On convergence
// the chain's bounding box is saved; on failure the chain is to be
// discarded.
func fitVerticalShear(c *Chain, prec float64) error {
	const maxiter = 10
	var xmin, xmax, ymin, ymax float64
	iter := 0
	for {
		var sx, sy, sxx, sxy float64
		if iter == 0 {
			for k, s := range c.segments {
				if k == 0 {
					xmin = float64(s.XMin)
					xmax = float64(s.XMax)
					ymin = float64(s.YMin)
					ymax = float64(s.YMax)
				} else {
					xmin = math.Min(xmin, float64(s.XMin))
					xmax = math.Max(xmax, float64(s.XMax))
					ymin = math.Min(ymin, float64(s.YMin))
					ymax = math.Max(ymax, float64(s.YMax))
				}
				x := s.XCen
				y := s.YCen
				sx += x
				sy += y
				sxx += x * x
				sxy += x * y
			}
		} else {
			for k, s := range c.segments {
				box := transformedBBox(s, &c.a)
				if k == 0 {
					xmin = box.xmin
					xmax = box.xmax
					ymin = box.ymin
					ymax = box.ymax
				} else {
					xmin = math.Min(xmin, box.xmin)
					xmax = math.Max(xmax, box.xmax)
					ymin = math.Min(ymin, box.ymin)
					ymax = math.Max(ymax, box.ymax)
				}
				x := 0.5 * (box.xmax + box.xmin)
				y := 0.5 * (box.ymax + box.ymin)
				sx += x
				sy += y
				sxx += x * x
				sxy += x * y
			}
		}
		_, _, slope, err := fitLine(float64(len(c.segments)), sx, sy, sxx, sxy)
		if err != nil {
			return err
		}
		// At least one iteration is required; the tolerance is the pixel
		// precision divided by the lever arm.
		tol := prec / (1 + xmax - xmin)
		converged := iter >= 1 && math.Abs(slope) <= tol
		c.verticalShear += slope
		c.a[2] = -c.verticalShear
		if converged {
			c.xmin = xmin
			c.xmax = xmax
			c.ymin = ymin
			c.ymax = ymax
			return nil
		}
		iter++
		if iter > maxiter {
			return errSingular
		}
	}
}

// fitHorizontalShear searches the horizontal shear that maximises the total
// spacing between consecutive transformed segment boxes, then recomputes
// the chain's bounding box under the final affine. The search enumerates
// shears 0, +step, -step, +2*step, ... where one step moves the box edges
// by a quarter pixel, out to half the mean segment width; the enumeration
// order makes ties resolve to the smaller magnitude. prec is accepted for
// symmetry with the vertical fit and not used.
func fitHorizontalShear(c *Chain, prec float64) error {
	_ = prec
	a := c.a

	width := (1 + c.xmax - c.xmin) / float64(len(c.segments))
	height := 1 + c.ymax - c.ymin
	step := 0.25 / height
	bound := 0.5 * width / height
	maxiter := 2 * int(math.Ceil(bound/step))

	bestShear := 0.0
	bestSpacing := 0.0
	for iter := 0; iter <= maxiter; iter++ {
		var shear float64
		if iter%2 == 0 {
			shear = step * float64(iter/2)
		} else {
			shear = -step * float64((iter+1)/2)
		}
		a[1] = -shear
		spacing := 0.0
		prevXMax := 0.0
		for k, s := range c.segments {
			box := transformedBBox(s, &a)
			if k != 0 {
				spacing += box.xmin - prevXMax
			}
			prevXMax = box.xmax
		}
		if iter == 0 || spacing > bestSpacing {
			bestShear = shear
			bestSpacing = spacing
		}
	}

	c.horizontalShear = bestShear
	c.a[1] = -c.horizontalShear
	a[1] = c.a[1]
	var xmin, xmax, ymin, ymax float64
	for k, s := range c.segments {
		box := transformedBBox(s, &a)
		if k == 0 {
			xmin = box.xmin
			xmax = box.xmax
			ymin = box.ymin
			ymax = box.ymax
		} else {
			xmin = math.Min(xmin, box.xmin)
			xmax = math.Max(xmax, box.xmax)
			ymin = math.Min(ymin, box.ymin)
			ymax = math.Max(ymax, box.ymax)
		}
	}
	c.xmin = xmin
	c.xmax = xmax
	c.ymin = ymin
	c.ymax = ymax
	return nil
}
