// Package imgio is the image front-end of the library: it loads images,
// converts them into the scalar rasters the segment package consumes, and
// provides the small pre-processing steps (denoising, morphology,
// resampling, noise estimation) that are typically applied before
// segmenting scanned text.
//
// The segmentation core is deliberately agnostic of image formats and
// colour models; everything format- or colour-related lives here.
//
// # Typical pipeline
//
//	img, err := imgio.Load("page.png")
//	if err != nil { ... }
//	img = imgio.Denoise(img, 1.0)
//	sgm, err := imgio.Segment(img, 8)
//	if err != nil { ... }
//	defer sgm.Unlink()
//	pool, err := chain.New(sgm, chain.DefaultOptions())
package imgio
