package chain

import (
	"fmt"
	"sort"

	"github.com/ironsheep/segment-tools/segment"
)

// Pool owns the chains built from one segmentation. It holds a counted
// reference on the segmentation until Destroy is called.
type Pool struct {
	segmentation *segment.Segmentation
	chains       []*Chain
}

// New builds the pool of maximal chains of the segmentation's segments.
//
// Out-of-range tuning values in opts are clamped, not rejected (see
// Options). The chain-link graph built during the call is discarded before
// New returns; the pool owns flat chain records only. Chains whose shear
// fit fails to converge are silently dropped, so a pool with zero chains is
// a valid result. A nil segmentation yields an error wrapping
// ErrInvalidArgument.
func New(sgm *segment.Segmentation, opts Options) (*Pool, error) {
	if sgm == nil {
		return nil, fmt.Errorf("%w: nil segmentation", ErrInvalidArgument)
	}
	opts = opts.clamped()
	b := newBuilder(opts)
	defer b.cells.Reset()

	// Sort segment references by ascending centre abscissa. The sorted
	// slice is reused as the reconstruction buffer once the level-1 pass
	// no longer needs the order.
	nsegments := sgm.Number()
	sorted := make([]*segment.Segment, nsegments)
	leaves := make([]node, nsegments)
	for j := 0; j < nsegments; j++ {
		s, err := sgm.SegmentAt(j)
		if err != nil {
			return nil, err
		}
		sorted[j] = s
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].XCen < sorted[j].XCen })
	for j, s := range sorted {
		leaves[j] = node{seg: s}
	}

	count := b.buildLevel1(sorted, leaves)
	if err := b.extend(count, sorted); err != nil {
		return nil, err
	}

	// Save the maximal chains: first count, then materialise. The global
	// list is in insertion order, newest first, so lengths only decrease
	// along the walk and it can stop at the first chain below the minimum
	// length. A chain covered by a longer one (nparents > 0) is skipped.
	nchains := 0
	var chains []*Chain
	for pass := 1; pass <= 2; pass++ {
		if pass == 2 {
			chains = make([]*Chain, 0, nchains)
		}
		for top := b.first; top != nil; top = top.next {
			length := top.hdr.level + 1
			if length < opts.LMin {
				break
			}
			if top.hdr.nparents != 0 {
				continue
			}
			if pass == 1 {
				nchains++
				continue
			}
			c := &Chain{
				segments: make([]*segment.Segment, length),
				a:        [4]float64{1, 0, 0, 1},
			}
			if reconstruct(top, c.segments) != length {
				return nil, fmt.Errorf("%w: chain length mismatch", ErrUnexpected)
			}
			if fitVerticalShear(c, opts.Prec) != nil {
				continue
			}
			if fitHorizontalShear(c, opts.Prec) != nil {
				continue
			}
			chains = append(chains, c)
		}
	}

	return &Pool{
		segmentation: sgm.Link(),
		chains:       chains,
	}, nil
}

// Destroy releases the pool's reference on its segmentation. The pool must
// not be used afterwards. Destroy is safe to call more than once.
func (p *Pool) Destroy() {
	if p == nil || p.segmentation == nil {
		return
	}
	p.segmentation.Unlink()
	p.segmentation = nil
	p.chains = nil
}

// Number returns the number of chains in the pool.
func (p *Pool) Number() int {
	if p == nil {
		return 0
	}
	return len(p.chains)
}

// Segmentation returns the segmentation the pool was built from. The
// reference is borrowed: the caller must Link it to keep it past the
// pool's lifetime.
func (p *Pool) Segmentation() *segment.Segmentation {
	if p == nil {
		return nil
	}
	return p.segmentation
}

// ImageWidth returns the width of the image the pool was built from.
func (p *Pool) ImageWidth() int {
	return p.Segmentation().ImageWidth()
}

// ImageHeight returns the height of the image the pool was built from.
func (p *Pool) ImageHeight() int {
	return p.Segmentation().ImageHeight()
}

// ChainAt returns the j-th chain. Chains are ordered by decreasing length
// (emission order of the chain graph).
func (p *Pool) ChainAt(j int) (*Chain, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil pool", ErrInvalidArgument)
	}
	if j < 0 || j >= len(p.chains) {
		return nil, fmt.Errorf("%w: chain index %d out of range [0,%d)",
			ErrInvalidArgument, j, len(p.chains))
	}
	return p.chains[j], nil
}

// fillChains copies one attribute of every chain into dst, which must have
// exactly Number() elements.
func fillChains[T any](p *Pool, dst []T, get func(*Chain) T) error {
	if p == nil || dst == nil {
		return fmt.Errorf("%w: nil pool or destination", ErrInvalidArgument)
	}
	if len(dst) != len(p.chains) {
		return fmt.Errorf("%w: destination length %d, want %d",
			ErrInvalidArgument, len(dst), len(p.chains))
	}
	for i, c := range p.chains {
		dst[i] = get(c)
	}
	return nil
}

// Length returns the number of segments of the j-th chain.
func (p *Pool) Length(j int) (int, error) {
	c, err := p.ChainAt(j)
	if err != nil {
		return 0, err
	}
	return c.Length(), nil
}

// Lengths fills dst with the segment count of every chain.
func (p *Pool) Lengths(dst []int) error {
	return fillChains(p, dst, (*Chain).Length)
}

// XMin returns the smallest transformed abscissa of the j-th chain.
func (p *Pool) XMin(j int) (float64, error) {
	c, err := p.ChainAt(j)
	if err != nil {
		return 0, err
	}
	return c.xmin, nil
}

// XMins fills dst with the smallest transformed abscissa of every chain.
func (p *Pool) XMins(dst []float64) error {
	return fillChains(p, dst, (*Chain).XMin)
}

// XMax returns the largest transformed abscissa of the j-th chain.
func (p *Pool) XMax(j int) (float64, error) {
	c, err := p.ChainAt(j)
	if err != nil {
		return 0, err
	}
	return c.xmax, nil
}

// XMaxs fills dst with the largest transformed abscissa of every chain.
func (p *Pool) XMaxs(dst []float64) error {
	return fillChains(p, dst, (*Chain).XMax)
}

// YMin returns the smallest transformed ordinate of the j-th chain.
func (p *Pool) YMin(j int) (float64, error) {
	c, err := p.ChainAt(j)
	if err != nil {
		return 0, err
	}
	return c.ymin, nil
}

// YMins fills dst with the smallest transformed ordinate of every chain.
func (p *Pool) YMins(dst []float64) error {
	return fillChains(p, dst, (*Chain).YMin)
}

// YMax returns the largest transformed ordinate of the j-th chain.
func (p *Pool) YMax(j int) (float64, error) {
	c, err := p.ChainAt(j)
	if err != nil {
		return 0, err
	}
	return c.ymax, nil
}

// YMaxs fills dst with the largest transformed ordinate of every chain.
func (p *Pool) YMaxs(dst []float64) error {
	return fillChains(p, dst, (*Chain).YMax)
}

// VerticalShear returns the fitted vertical shear of the j-th chain.
func (p *Pool) VerticalShear(j int) (float64, error) {
	c, err := p.ChainAt(j)
	if err != nil {
		return 0, err
	}
	return c.verticalShear, nil
}

// VerticalShears fills dst with the fitted vertical shear of every chain.
func (p *Pool) VerticalShears(dst []float64) error {
	return fillChains(p, dst, (*Chain).VerticalShear)
}

// HorizontalShear returns the fitted horizontal shear of the j-th chain.
func (p *Pool) HorizontalShear(j int) (float64, error) {
	c, err := p.ChainAt(j)
	if err != nil {
		return 0, err
	}
	return c.horizontalShear, nil
}

// HorizontalShears fills dst with the fitted horizontal shear of every
// chain.
func (p *Pool) HorizontalShears(dst []float64) error {
	return fillChains(p, dst, (*Chain).HorizontalShear)
}

// Segments fills dst with the source-segmentation indices of the j-th
// chain's segments, left to right. dst must have Length(j) elements.
func (p *Pool) Segments(j int, dst []int) error {
	c, err := p.ChainAt(j)
	if err != nil {
		return err
	}
	return c.Segments(dst)
}
