package imgio

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Denoise applies a Gaussian blur of the given radius. A radius around the
// noise grain size (1-2 pixels for most scans) removes speckle that would
// otherwise fragment regions, at the cost of softening edges. A
// non-positive radius returns the input unchanged.
func Denoise(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return blur.Gaussian(img, radius)
}

// Erode applies morphological erosion with the given radius: dark features
// grow, thin bright specks disappear. Useful to reconnect broken strokes
// before segmenting dark-on-light text.
func Erode(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return effect.Erode(img, radius)
}

// Dilate applies morphological dilation with the given radius: bright
// features grow, thin dark specks disappear.
func Dilate(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return effect.Dilate(img, radius)
}

// Resample scales an image to width x height with bilinear interpolation.
// Bilinear is the right trade-off ahead of segmentation: it does not
// introduce the ringing that sharper kernels add around text strokes.
func Resample(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Thumbnail scales an image to fit within width x height, preserving the
// aspect ratio, with Lanczos resampling. Intended for previews, not for
// rasters that will be segmented.
func Thumbnail(img image.Image, width, height int) image.Image {
	return imaging.Fit(img, width, height, imaging.Lanczos)
}
