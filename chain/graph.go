package chain

import (
	"math"

	"github.com/ironsheep/segment-tools/internal/pool"
	"github.com/ironsheep/segment-tools/segment"
)

// node is a chainable element of the chain graph: either a bare segment
// (level 0) or a chainlink (level >= 1). The shared header fields are kept
// here so that links can treat both uniformly.
type node struct {
	level     int
	nparents  int        // number of links that use this node as a child
	firstLink *chainlink // head of the list of links whose left child is this node

	seg  *segment.Segment // leaf payload, nil for links
	link *chainlink       // composite payload, nil for leaves
}

// chainlink joins two nodes of equal level into a node of the next level.
// A link at level l covers exactly l+1 segments; first and last cache the
// endpoints of that sub-chain.
type chainlink struct {
	hdr      *node      // this link's own header in the graph
	next     *chainlink // all links, newest (highest level) first
	nextLink *chainlink // links sharing the same left child
	left     *node
	right    *node
	first    *segment.Segment
	last     *segment.Segment
}

// linkCell bundles a chainlink with its header so both come out of the
// arena in one allocation.
type linkCell struct {
	link chainlink
	hdr  node
}

// builder holds the state of one New call. All chainlinks live in the
// arena and die with the builder; nothing of the graph escapes into the
// emitted Pool.
type builder struct {
	opts  Options
	cells *pool.Pool[linkCell]
	first *chainlink // insertion-order list of all links, newest first

	// Derived admission coefficients.
	sa, sq, sr, rmin, rmax float64
}

func newBuilder(opts Options) *builder {
	return &builder{
		opts:  opts,
		cells: pool.New[linkCell](20),
		sa:    1 + 2*opts.SATol,
		sq:    2 - opts.SRTol,
		sr:    2 + opts.SRTol,
		rmin:  0.5 * opts.DRMin,
		rmax:  0.5 * opts.DRMax,
	}
}

// insert creates a chainlink over two nodes of equal level and splices it
// into the graph: the global insertion-order list, the left child's
// same-left-child list, and both children's parent counts.
func (b *builder) insert(left, right *node) *chainlink {
	cell := b.cells.Get()
	l := &cell.link
	n := &cell.hdr
	l.hdr = n
	n.level = left.level + 1
	n.link = l

	l.next = b.first
	b.first = l
	l.nextLink = left.firstLink
	left.firstLink = l
	l.left = left
	left.nparents++
	l.right = right
	right.nparents++

	if left.level > 0 {
		l.first = left.link.first
	} else {
		l.first = left.seg
	}
	if right.level > 0 {
		l.last = right.link.last
	} else {
		l.last = right.seg
	}
	return l
}

// reconstruct writes the dense left-to-right segment sequence of the chain
// defined by top into dst and returns the number of entries written. The
// walk follows the left-child rib: each link contributes its first segment,
// then descends into its right child.
func reconstruct(top *chainlink, dst []*segment.Segment) int {
	k := 0
	n := top.hdr
	for n.level > 0 {
		dst[k] = n.link.first
		k++
		n = n.link.right
	}
	dst[k] = n.seg
	return k + 1
}

// buildLevel1 creates the level-1 links between pairs of segments. sorted
// is the segment list in ascending centre-abscissa order and leaves the
// parallel table of leaf nodes. It returns the number of links created.
func (b *builder) buildLevel1(sorted []*segment.Segment, leaves []node) int {
	slope := b.opts.Slope
	count := 0
	for jleft := range sorted {
		left := sorted[jleft]
		h0 := float64(left.Height)
		w0 := float64(left.Width)
		x0 := left.XCen
		y0 := left.YCen
		hmin := (b.sq*h0 - b.sa) / b.sr
		hmax := (b.sr*h0 + b.sa) / b.sq
		xlim := x0 + b.rmax*(h0+hmax)

		for jright := jleft + 1; jright < len(sorted); jright++ {
			// The cheapest and most selective tests come first.
			right := sorted[jright]
			x1 := right.XCen
			if x1 >= xlim {
				// Segments are ordered by ascending abscissa: nothing
				// beyond this limit can pair with left.
				break
			}
			h1 := float64(right.Height)
			if h1 <= hmin || h1 >= hmax {
				continue
			}
			y1 := right.YCen
			if math.Abs(y1-y0) > slope*math.Abs(x1-x0) {
				continue
			}
			w1 := float64(right.Width)
			dx := x1 - x0
			if dx < 1+b.rmin*(w0+w1) || dx > b.rmax*(h0+h1) {
				continue
			}

			// The candidate must not be aligned with any existing
			// successor of left: prefer the closer right neighbour unless
			// jumping over it is geometrically necessary. Works because
			// the closest candidates are tried first.
			if leaves[jleft].firstLink != nil {
				pair := [2]*segment.Segment{left, right}
				line := newShortLine(pair[:])
				skip := false
				for l := leaves[jleft].firstLink; l != nil; l = l.nextLink {
					if line.accept(l.last, slope, b.opts.AATol, b.opts.ARTol) {
						skip = true
						break
					}
				}
				if skip {
					continue
				}
			}

			b.insert(&leaves[jleft], &leaves[jright])
			count++
		}
	}
	return count
}

// extend grows chains level by level: every link at the current head level
// is tried against the links that continue from its right child, and each
// aligned continuation spawns a link one level up. The sweep repeats until
// a level produces nothing, or chains reach the maximum length. scratch
// must hold at least one entry per segment.
func (b *builder) extend(count int, scratch []*segment.Segment) error {
	for count > 0 {
		level := b.first.hdr.level
		length := level + 1
		if length > len(scratch) {
			return ErrUnexpected
		}
		if length >= b.opts.LMax {
			break
		}
		count = 0
		for top := b.first; top != nil && top.hdr.level == level; top = top.next {
			if top.right.firstLink == nil {
				continue
			}
			if reconstruct(top, scratch) != length {
				return ErrUnexpected
			}
			line := newShortLine(scratch[:length])
			for l := top.right.firstLink; l != nil; l = l.nextLink {
				if line.accept(l.last, b.opts.Slope, b.opts.AATol, b.opts.ARTol) {
					b.insert(top.hdr, l.hdr)
					count++
				}
			}
		}
	}
	return nil
}
