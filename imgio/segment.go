package imgio

import (
	"image"

	"github.com/ironsheep/segment-tools/chain"
	"github.com/ironsheep/segment-tools/segment"
)

// Segment converts an image to 8-bit grayscale and segments it into
// connected regions: two neighbouring pixels belong to the same region
// when their gray levels differ by at most threshold (exact equality when
// threshold truncates to zero).
//
// The caller owns the returned handle and releases it with Unlink.
func Segment(img image.Image, threshold float64) (*segment.Segmentation, error) {
	pix, width, height := Gray8(img)
	return segment.New(pix, segment.PixelUint8, 0, width, height, width, threshold)
}

// Chains segments an image and chains the resulting regions into candidate
// text lines in one call. The returned pool keeps the intermediate
// segmentation alive; retrieve it with Segmentation() or let Destroy drop
// it.
func Chains(img image.Image, threshold float64, opts chain.Options) (*chain.Pool, error) {
	sgm, err := Segment(img, threshold)
	if err != nil {
		return nil, err
	}
	// The pool takes its own reference; release the builder's.
	defer sgm.Unlink()
	return chain.New(sgm, opts)
}
