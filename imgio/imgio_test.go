package imgio

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/segment-tools/chain"
)

// solidImage creates a width x height image filled with one colour.
func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestGray8(t *testing.T) {
	img := solidImage(6, 4, color.RGBA{100, 150, 200, 255})
	pix, width, height := Gray8(img)
	if width != 6 || height != 4 {
		t.Fatalf("dimensions = %dx%d, want 6x4", width, height)
	}
	if len(pix) != 24 {
		t.Fatalf("raster length = %d, want 24", len(pix))
	}
	// BT.601: 0.299*100 + 0.587*150 + 0.114*200 = 140.75.
	for i, v := range pix {
		if v != pix[0] {
			t.Fatalf("uniform image produced non-uniform raster at %d: %d vs %d", i, v, pix[0])
		}
	}
	if d := math.Abs(float64(pix[0]) - 140.75); d > 2 {
		t.Errorf("luma = %d, want ~141", pix[0])
	}
}

func TestLabLightness(t *testing.T) {
	pix, width, height := LabLightness(solidImage(3, 3, color.White))
	if width != 3 || height != 3 {
		t.Fatalf("dimensions = %dx%d, want 3x3", width, height)
	}
	for _, l := range pix {
		if math.Abs(l-100) > 0.5 {
			t.Errorf("white lightness = %g, want ~100", l)
		}
	}
	pix, _, _ = LabLightness(solidImage(2, 2, color.Black))
	for _, l := range pix {
		if math.Abs(l) > 0.5 {
			t.Errorf("black lightness = %g, want ~0", l)
		}
	}
}

func TestEstimateNoise(t *testing.T) {
	// A constant raster has no 2x2 residual.
	flat := make([]float64, 16)
	for i := range flat {
		flat[i] = 3.5
	}
	noise, err := EstimateNoise(flat, 0, 4, 4, 4)
	if err != nil {
		t.Fatalf("EstimateNoise failed: %v", err)
	}
	if noise != 0 {
		t.Errorf("flat raster noise = %g, want 0", noise)
	}

	// A 2x2 checkerboard has a single residual of 2: sqrt(4/16) = 0.5.
	checker := []float64{0, 1, 1, 0}
	noise, err = EstimateNoise(checker, 0, 2, 2, 2)
	if err != nil {
		t.Fatalf("EstimateNoise failed: %v", err)
	}
	if math.Abs(noise-0.5) > 1e-12 {
		t.Errorf("checker noise = %g, want 0.5", noise)
	}

	// A linear ramp also cancels.
	ramp := make([]float64, 12)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			ramp[y*4+x] = float64(2*x + 7*y)
		}
	}
	noise, err = EstimateNoise(ramp, 0, 4, 3, 4)
	if err != nil {
		t.Fatalf("EstimateNoise failed: %v", err)
	}
	if noise != 0 {
		t.Errorf("ramp noise = %g, want 0", noise)
	}

	// Argument validation.
	if _, err := EstimateNoise(nil, 0, 2, 2, 2); err == nil {
		t.Errorf("nil raster accepted")
	}
	if _, err := EstimateNoise(flat, 0, 0, 4, 4); err == nil {
		t.Errorf("zero width accepted")
	}
	if _, err := EstimateNoise(flat, 0, 4, 4, 3); err == nil {
		t.Errorf("stride below width accepted")
	}
	if _, err := EstimateNoise(flat, 8, 4, 4, 4); err == nil {
		t.Errorf("out-of-range region accepted")
	}
}

func TestSegmentBridge(t *testing.T) {
	img := solidImage(4, 4, color.White)
	sgm, err := Segment(img, 0)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	defer sgm.Unlink()
	if sgm.Number() != 1 {
		t.Errorf("uniform image: Number() = %d, want 1", sgm.Number())
	}
	if sgm.ImageWidth() != 4 || sgm.ImageHeight() != 4 {
		t.Errorf("image size = %dx%d, want 4x4", sgm.ImageWidth(), sgm.ImageHeight())
	}
}

func TestChainsBridge(t *testing.T) {
	// Three dark glyphs on a light row.
	img := solidImage(44, 16, color.White)
	for k := 0; k < 3; k++ {
		cx, cy := 8+12*k, 8
		for y := cy - 2; y <= cy+2; y++ {
			for x := cx - 2; x <= cx+2; x++ {
				img.Set(x, y, color.Black)
			}
		}
	}
	pool, err := Chains(img, 0, chain.DefaultOptions())
	if err != nil {
		t.Fatalf("Chains failed: %v", err)
	}
	defer pool.Destroy()
	if pool.Number() != 1 {
		t.Fatalf("Number() = %d, want 1", pool.Number())
	}
	if length, _ := pool.Length(0); length != 3 {
		t.Errorf("Length(0) = %d, want 3", length)
	}
	if pool.Segmentation().NRefs() != 1 {
		t.Errorf("pool segmentation NRefs = %d, want 1", pool.Segmentation().NRefs())
	}
}

func TestPreprocessDimensions(t *testing.T) {
	img := solidImage(10, 8, color.RGBA{120, 120, 120, 255})

	if out := Denoise(img, 0); out != image.Image(img) {
		t.Errorf("Denoise with zero radius did not return the input")
	}
	if out := Denoise(img, 1.5); out.Bounds().Dx() != 10 || out.Bounds().Dy() != 8 {
		t.Errorf("Denoise changed dimensions to %v", out.Bounds())
	}
	if out := Erode(img, 1); out.Bounds().Dx() != 10 || out.Bounds().Dy() != 8 {
		t.Errorf("Erode changed dimensions to %v", out.Bounds())
	}
	if out := Dilate(img, 1); out.Bounds().Dx() != 10 || out.Bounds().Dy() != 8 {
		t.Errorf("Dilate changed dimensions to %v", out.Bounds())
	}
	if out := Resample(img, 5, 4); out.Bounds().Dx() != 5 || out.Bounds().Dy() != 4 {
		t.Errorf("Resample produced %v, want 5x4", out.Bounds())
	}
	if out := Thumbnail(img, 5, 5); out.Bounds().Dx() > 5 || out.Bounds().Dy() > 5 {
		t.Errorf("Thumbnail exceeded the requested fit: %v", out.Bounds())
	}
}

func TestFromBase64(t *testing.T) {
	// A 1x1 transparent PNG.
	const onePixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
	img, err := FromBase64(onePixel)
	if err != nil {
		t.Fatalf("FromBase64 failed: %v", err)
	}
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Errorf("decoded bounds = %v, want 1x1", img.Bounds())
	}
	if _, err := FromBase64("data:image/png;base64," + onePixel); err != nil {
		t.Errorf("data URI prefix not handled: %v", err)
	}
	if _, err := FromBase64("@@not-base64@@"); err == nil {
		t.Errorf("invalid base64 accepted")
	}
}
