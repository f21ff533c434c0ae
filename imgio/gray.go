package imgio

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Gray8 converts an image to an 8-bit grayscale raster in row-major order.
// Luminance follows ITU-R BT.601, the convention used across the library.
// The returned slice can be handed directly to segment.New with
// segment.PixelUint8 and a stride equal to the width.
func Gray8(img image.Image) (pix []uint8, width, height int) {
	gray := imaging.Grayscale(img)
	width = gray.Bounds().Dx()
	height = gray.Bounds().Dy()
	pix = make([]uint8, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < width; x++ {
			// Grayscale output has R = G = B.
			pix[y*width+x] = row[x*4]
		}
	}
	return pix, width, height
}

// LabLightness converts an image to a raster of CIE-Lab L* values in
// [0, 100], row-major. Lab lightness is perceptually uniform, so a
// segmentation threshold on this raster treats dark-on-light and
// light-on-dark contrast alike; feed the result to segment.New with
// segment.PixelFloat64.
func LabLightness(img image.Image) (pix []float64, width, height int) {
	bounds := img.Bounds()
	width = bounds.Dx()
	height = bounds.Dy()
	pix = make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c, ok := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			if !ok {
				// Fully transparent pixel: treat as black.
				continue
			}
			l, _, _ := c.Lab()
			pix[y*width+x] = l * 100
		}
	}
	return pix, width, height
}
