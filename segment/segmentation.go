package segment

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Segmentation is an immutable, reference-counted container for the
// segments of one image. It owns a single packed buffer holding the points
// of all segments back to back; each Segment's Points field is a view into
// that buffer.
//
// A new handle starts with one reference. Holders that want to keep the
// handle alive independently call Link and later Unlink; the chain package
// does this for the pool it builds. Once all outstanding builder activity
// has completed, a Segmentation may be read from multiple goroutines.
type Segmentation struct {
	nrefs    int32
	segments []Segment
	points   []Point
	width    int
	height   int
}

// New segments a raster of samples into connected regions.
//
// The raster is described exactly as for BuildLinks: data is a []T slice
// matching typ, laid out with the given offset and row stride. Two
// neighbouring pixels belong to the same region when their samples differ
// by at most threshold (exact equality when threshold truncates to zero in
// the pixel's numeric space).
//
// Regions are seeded in raster-scan order: the first pixel not yet owned by
// a region starts the next one. Within a region, points are emitted in
// breadth-first order, so two runs on identical input produce identical
// output.
//
// A zero-area image (width or height zero) yields a valid handle with no
// segments. Negative dimensions, a stride smaller than the width, nil or
// undersized buffers, and unsupported pixel types yield an error wrapping
// ErrInvalidArgument.
func New(data any, typ PixelType, offset, width, height, stride int, threshold float64) (*Segmentation, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	// Point coordinates are 16-bit.
	if width > math.MaxInt16+1 || height > math.MaxInt16+1 {
		return nil, fmt.Errorf("%w: dimensions %dx%d exceed the point coordinate range",
			ErrInvalidArgument, width, height)
	}
	if width == 0 || height == 0 {
		return &Segmentation{nrefs: 1, width: width, height: height}, nil
	}

	npixels := width * height
	lnk := make([]uint8, npixels)
	if err := BuildLinks(data, typ, offset, stride, lnk, 0, width, width, height, threshold); err != nil {
		return nil, err
	}

	// Flood-fill the link map. The points buffer doubles as the per-region
	// work queue: a stored point is both output and a queue entry whose
	// neighbours remain to be examined. The owned bit marks visited pixels;
	// a point's Link mask is recorded before the bit is set, so emitted
	// masks carry the four directions only.
	points := make([]Point, npixels)
	counts := make([]int, 0, 64)
	np := 0
	store := func(k int) {
		points[np] = Point{X: int16(k % width), Y: int16(k / width), Link: lnk[k]}
		lnk[k] |= linkOwned
		np++
	}
	for i := 0; i < npixels; i++ {
		if lnk[i]&linkOwned != 0 {
			continue
		}
		first := np
		store(i)
		for j := first; j < np; j++ {
			k := int(points[j].Y)*width + int(points[j].X)
			mask := points[j].Link
			if mask&LinkWest != 0 && lnk[k-1]&linkOwned == 0 {
				store(k - 1)
			}
			if mask&LinkEast != 0 && lnk[k+1]&linkOwned == 0 {
				store(k + 1)
			}
			if mask&LinkSouth != 0 && lnk[k-width]&linkOwned == 0 {
				store(k - width)
			}
			if mask&LinkNorth != 0 && lnk[k+width]&linkOwned == 0 {
				store(k + width)
			}
		}
		counts = append(counts, np-first)
	}
	if np != npixels {
		return nil, fmt.Errorf("%w: flood fill covered %d of %d pixels", ErrUnexpected, np, npixels)
	}

	// Build the segment table over the packed points.
	segments := make([]Segment, len(counts))
	pos := 0
	for i, n := range counts {
		pts := points[pos : pos+n : pos+n]
		xmin, xmax := pts[0].X, pts[0].X
		ymin, ymax := pts[0].Y, pts[0].Y
		for _, p := range pts[1:] {
			if p.X < xmin {
				xmin = p.X
			}
			if p.X > xmax {
				xmax = p.X
			}
			if p.Y < ymin {
				ymin = p.Y
			}
			if p.Y > ymax {
				ymax = p.Y
			}
		}
		segments[i] = Segment{
			Points: pts,
			Index:  i,
			XMin:   int(xmin),
			XMax:   int(xmax),
			YMin:   int(ymin),
			YMax:   int(ymax),
			Width:  int(xmax-xmin) + 1,
			Height: int(ymax-ymin) + 1,
			XCen:   float64(xmin+xmax) * 0.5,
			YCen:   float64(ymin+ymax) * 0.5,
		}
		pos += n
	}

	return &Segmentation{
		nrefs:    1,
		segments: segments,
		points:   points,
		width:    width,
		height:   height,
	}, nil
}

// Select builds a new Segmentation containing only the segments at the
// given indices, in the given order. Duplicates and reorderings are
// permitted. The points of the selected segments are copied into a buffer
// owned by the new handle, and each copied segment's Index is its position
// in the new handle.
//
// An empty index list or an index outside [0, Number()) yields an error
// wrapping ErrInvalidArgument.
func (s *Segmentation) Select(indices []int) (*Segmentation, error) {
	if s == nil || indices == nil {
		return nil, fmt.Errorf("%w: nil segmentation or index list", ErrInvalidArgument)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: empty index list", ErrInvalidArgument)
	}
	npoints := 0
	for _, j := range indices {
		if j < 0 || j >= len(s.segments) {
			return nil, fmt.Errorf("%w: segment index %d out of range [0,%d)",
				ErrInvalidArgument, j, len(s.segments))
		}
		npoints += s.segments[j].Count()
	}

	points := make([]Point, npoints)
	segments := make([]Segment, len(indices))
	pos := 0
	for i, j := range indices {
		src := &s.segments[j]
		n := src.Count()
		pts := points[pos : pos+n : pos+n]
		copy(pts, src.Points)
		segments[i] = *src
		segments[i].Points = pts
		segments[i].Index = i
		pos += n
	}
	return &Segmentation{
		nrefs:    1,
		segments: segments,
		points:   points,
		width:    s.width,
		height:   s.height,
	}, nil
}

// Link increments the reference count and returns the handle.
func (s *Segmentation) Link() *Segmentation {
	if s != nil {
		atomic.AddInt32(&s.nrefs, 1)
	}
	return s
}

// Unlink decrements the reference count. When the count reaches zero the
// handle releases its buffers; the handle and every Segment obtained from
// it must not be used afterwards.
func (s *Segmentation) Unlink() {
	if s != nil && atomic.AddInt32(&s.nrefs, -1) <= 0 {
		s.segments = nil
		s.points = nil
	}
}

// NRefs returns the current reference count, or -1 for a nil handle.
func (s *Segmentation) NRefs() int {
	if s == nil {
		return -1
	}
	return int(atomic.LoadInt32(&s.nrefs))
}

// Number returns the number of segments.
func (s *Segmentation) Number() int {
	if s == nil {
		return 0
	}
	return len(s.segments)
}

// ImageWidth returns the width of the segmented image.
func (s *Segmentation) ImageWidth() int {
	if s == nil {
		return 0
	}
	return s.width
}

// ImageHeight returns the height of the segmented image.
func (s *Segmentation) ImageHeight() int {
	if s == nil {
		return 0
	}
	return s.height
}

// SegmentAt returns the j-th segment. The returned Segment is owned by the
// handle and must be treated as read-only.
func (s *Segmentation) SegmentAt(j int) (*Segment, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil segmentation", ErrInvalidArgument)
	}
	if j < 0 || j >= len(s.segments) {
		return nil, fmt.Errorf("%w: segment index %d out of range [0,%d)",
			ErrInvalidArgument, j, len(s.segments))
	}
	return &s.segments[j], nil
}

// fill copies one attribute of every segment into dst, which must have
// exactly Number() elements.
func fill[T any](s *Segmentation, dst []T, get func(*Segment) T) error {
	if s == nil || dst == nil {
		return fmt.Errorf("%w: nil segmentation or destination", ErrInvalidArgument)
	}
	if len(dst) != len(s.segments) {
		return fmt.Errorf("%w: destination length %d, want %d",
			ErrInvalidArgument, len(dst), len(s.segments))
	}
	for i := range s.segments {
		dst[i] = get(&s.segments[i])
	}
	return nil
}

// Count returns the number of points of the j-th segment.
func (s *Segmentation) Count(j int) (int, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.Count(), nil
}

// Counts fills dst with the point count of every segment.
func (s *Segmentation) Counts(dst []int) error {
	return fill(s, dst, (*Segment).Count)
}

// XMin returns the smallest x coordinate of the j-th segment.
func (s *Segmentation) XMin(j int) (int, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.XMin, nil
}

// XMins fills dst with the smallest x coordinate of every segment.
func (s *Segmentation) XMins(dst []int) error {
	return fill(s, dst, func(sg *Segment) int { return sg.XMin })
}

// XMax returns the largest x coordinate of the j-th segment.
func (s *Segmentation) XMax(j int) (int, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.XMax, nil
}

// XMaxs fills dst with the largest x coordinate of every segment.
func (s *Segmentation) XMaxs(dst []int) error {
	return fill(s, dst, func(sg *Segment) int { return sg.XMax })
}

// YMin returns the smallest y coordinate of the j-th segment.
func (s *Segmentation) YMin(j int) (int, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.YMin, nil
}

// YMins fills dst with the smallest y coordinate of every segment.
func (s *Segmentation) YMins(dst []int) error {
	return fill(s, dst, func(sg *Segment) int { return sg.YMin })
}

// YMax returns the largest y coordinate of the j-th segment.
func (s *Segmentation) YMax(j int) (int, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.YMax, nil
}

// YMaxs fills dst with the largest y coordinate of every segment.
func (s *Segmentation) YMaxs(dst []int) error {
	return fill(s, dst, func(sg *Segment) int { return sg.YMax })
}

// Width returns the bounding-box width of the j-th segment.
func (s *Segmentation) Width(j int) (int, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.Width, nil
}

// Widths fills dst with the bounding-box width of every segment.
func (s *Segmentation) Widths(dst []int) error {
	return fill(s, dst, func(sg *Segment) int { return sg.Width })
}

// Height returns the bounding-box height of the j-th segment.
func (s *Segmentation) Height(j int) (int, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.Height, nil
}

// Heights fills dst with the bounding-box height of every segment.
func (s *Segmentation) Heights(dst []int) error {
	return fill(s, dst, func(sg *Segment) int { return sg.Height })
}

// XCen returns the bounding-box centre abscissa of the j-th segment.
func (s *Segmentation) XCen(j int) (float64, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.XCen, nil
}

// XCens fills dst with the bounding-box centre abscissa of every segment.
func (s *Segmentation) XCens(dst []float64) error {
	return fill(s, dst, func(sg *Segment) float64 { return sg.XCen })
}

// YCen returns the bounding-box centre ordinate of the j-th segment.
func (s *Segmentation) YCen(j int) (float64, error) {
	sg, err := s.SegmentAt(j)
	if err != nil {
		return 0, err
	}
	return sg.YCen, nil
}

// YCens fills dst with the bounding-box centre ordinate of every segment.
func (s *Segmentation) YCens(dst []float64) error {
	return fill(s, dst, func(sg *Segment) float64 { return sg.YCen })
}

// fillPoints copies one attribute of every point of segment i into dst,
// which must have exactly Count(i) elements.
func fillPoints[T any](s *Segmentation, i int, dst []T, get func(Point) T) error {
	sg, err := s.SegmentAt(i)
	if err != nil {
		return err
	}
	if dst == nil {
		return fmt.Errorf("%w: nil destination", ErrInvalidArgument)
	}
	if len(dst) != sg.Count() {
		return fmt.Errorf("%w: destination length %d, want %d",
			ErrInvalidArgument, len(dst), sg.Count())
	}
	for k, p := range sg.Points {
		dst[k] = get(p)
	}
	return nil
}

// PointXs fills dst with the x coordinate of every point of segment i.
func (s *Segmentation) PointXs(i int, dst []int) error {
	return fillPoints(s, i, dst, func(p Point) int { return int(p.X) })
}

// PointYs fills dst with the y coordinate of every point of segment i.
func (s *Segmentation) PointYs(i int, dst []int) error {
	return fillPoints(s, i, dst, func(p Point) int { return int(p.Y) })
}

// PointLinks fills dst with the four-direction link mask of every point of
// segment i.
func (s *Segmentation) PointLinks(i int, dst []uint8) error {
	return fillPoints(s, i, dst, func(p Point) uint8 { return p.Link })
}
