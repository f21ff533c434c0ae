package segment

import (
	"errors"
	"testing"
)

// buildLinkMap runs BuildLinks over a width x height raster with a stride
// equal to the width and returns the bitmap.
func buildLinkMap(t *testing.T, data any, typ PixelType, width, height int, threshold float64) []uint8 {
	t.Helper()
	lnk := make([]uint8, width*height)
	if err := BuildLinks(data, typ, 0, width, lnk, 0, width, width, height, threshold); err != nil {
		t.Fatalf("BuildLinks failed: %v", err)
	}
	return lnk
}

// checkSymmetry verifies that every link has both endpoints set.
func checkSymmetry(t *testing.T, lnk []uint8, width, height int) {
	t.Helper()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m := lnk[y*width+x]
			if x+1 < width {
				east := m&LinkEast != 0
				west := lnk[y*width+x+1]&LinkWest != 0
				if east != west {
					t.Errorf("asymmetric horizontal link at (%d,%d): east=%v west=%v", x, y, east, west)
				}
			} else if m&LinkEast != 0 {
				t.Errorf("east link out of range at (%d,%d)", x, y)
			}
			if y+1 < height {
				north := m&LinkNorth != 0
				south := lnk[(y+1)*width+x]&LinkSouth != 0
				if north != south {
					t.Errorf("asymmetric vertical link at (%d,%d): north=%v south=%v", x, y, north, south)
				}
			} else if m&LinkNorth != 0 {
				t.Errorf("north link out of range at (%d,%d)", x, y)
			}
			if x == 0 && m&LinkWest != 0 {
				t.Errorf("west link out of range at (0,%d)", y)
			}
			if y == 0 && m&LinkSouth != 0 {
				t.Errorf("south link out of range at (%d,0)", x)
			}
		}
	}
}

func TestBuildLinksSymmetry(t *testing.T) {
	const width, height = 13, 9
	pix := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = uint8((x*7 + y*13) % 5)
		}
	}
	for _, threshold := range []float64{0, 1, 2, 100} {
		lnk := buildLinkMap(t, pix, PixelUint8, width, height, threshold)
		checkSymmetry(t, lnk, width, height)
	}
}

func TestBuildLinksExactMatch(t *testing.T) {
	const width, height = 8, 6
	pix := make([]int32, width*height)
	for i := range pix {
		pix[i] = int32(i % 3)
	}
	lnk := buildLinkMap(t, pix, PixelInt32, width, height, 0)
	for y := 0; y < height; y++ {
		for x := 0; x+1 < width; x++ {
			linked := lnk[y*width+x]&LinkEast != 0
			equal := pix[y*width+x] == pix[y*width+x+1]
			if linked != equal {
				t.Errorf("horizontal link at (%d,%d): linked=%v equal=%v", x, y, linked, equal)
			}
		}
	}
	for y := 0; y+1 < height; y++ {
		for x := 0; x < width; x++ {
			linked := lnk[y*width+x]&LinkNorth != 0
			equal := pix[y*width+x] == pix[(y+1)*width+x]
			if linked != equal {
				t.Errorf("vertical link at (%d,%d): linked=%v equal=%v", x, y, linked, equal)
			}
		}
	}
}

func TestBuildLinksTolerance(t *testing.T) {
	pix := []uint8{10, 10, 20, 20}
	lnk := buildLinkMap(t, pix, PixelUint8, 4, 1, 5)
	wantEast := []bool{true, false, true, false}
	for x, want := range wantEast {
		if got := lnk[x]&LinkEast != 0; got != want {
			t.Errorf("threshold 5, east link at x=%d: got %v, want %v", x, got, want)
		}
	}

	lnk = buildLinkMap(t, pix, PixelUint8, 4, 1, 10)
	for x := 0; x < 3; x++ {
		if lnk[x]&LinkEast == 0 {
			t.Errorf("threshold 10, east link at x=%d missing", x)
		}
	}
}

// A fractional threshold truncates to zero in an integer pixel space, so it
// falls back to exact equality.
func TestBuildLinksThresholdTruncation(t *testing.T) {
	pix := []uint8{10, 11}
	lnk := buildLinkMap(t, pix, PixelUint8, 2, 1, 0.9)
	if lnk[0]&LinkEast != 0 {
		t.Errorf("truncated threshold 0.9 linked samples 10 and 11")
	}
	lnk = buildLinkMap(t, pix, PixelUint8, 2, 1, 1.0)
	if lnk[0]&LinkEast == 0 {
		t.Errorf("threshold 1.0 did not link samples 10 and 11")
	}
}

func TestBuildLinksSignedWraparound(t *testing.T) {
	// The extreme values of the type must not wrap when differenced.
	pix := []int8{-128, 127}
	lnk := buildLinkMap(t, pix, PixelInt8, 2, 1, 10)
	if lnk[0]&LinkEast != 0 {
		t.Errorf("samples -128 and 127 linked at threshold 10")
	}
	lnk = buildLinkMap(t, pix, PixelInt8, 2, 1, 255)
	if lnk[0]&LinkEast == 0 {
		t.Errorf("samples -128 and 127 not linked at threshold 255")
	}
}

func TestBuildLinksFloat(t *testing.T) {
	pix := []float64{1.0, 1.25, 2.0}
	lnk := buildLinkMap(t, pix, PixelFloat64, 3, 1, 0.5)
	if lnk[0]&LinkEast == 0 {
		t.Errorf("|1.0-1.25| <= 0.5 not linked")
	}
	if lnk[1]&LinkEast != 0 {
		t.Errorf("|1.25-2.0| > 0.5 linked")
	}
}

func TestBuildLinksErrors(t *testing.T) {
	lnk := make([]uint8, 4)
	pix := []uint8{1, 2, 3, 4}

	tests := []struct {
		name string
		err  error
	}{
		{"nil data", BuildLinks(nil, PixelUint8, 0, 2, lnk, 0, 2, 2, 2, 0)},
		{"nil bitmap", BuildLinks(pix, PixelUint8, 0, 2, nil, 0, 2, 2, 2, 0)},
		{"stride below width", BuildLinks(pix, PixelUint8, 0, 1, lnk, 0, 2, 2, 2, 0)},
		{"zero width", BuildLinks(pix, PixelUint8, 0, 2, lnk, 0, 2, 0, 2, 0)},
		{"negative height", BuildLinks(pix, PixelUint8, 0, 2, lnk, 0, 2, 2, -1, 0)},
		{"short buffer", BuildLinks(pix, PixelUint8, 0, 3, lnk, 0, 2, 2, 2, 0)},
		{"complex type", BuildLinks(pix, PixelComplex64, 0, 2, lnk, 0, 2, 2, 2, 0)},
		{"rgb type", BuildLinks(pix, PixelRGB, 0, 2, lnk, 0, 2, 2, 2, 0)},
		{"unknown type", BuildLinks(pix, PixelType(99), 0, 2, lnk, 0, 2, 2, 2, 0)},
		{"buffer type mismatch", BuildLinks(pix, PixelInt16, 0, 2, lnk, 0, 2, 2, 2, 0)},
	}
	for _, tt := range tests {
		if tt.err == nil {
			t.Errorf("%s: expected error, got nil", tt.name)
		} else if !errors.Is(tt.err, ErrInvalidArgument) {
			t.Errorf("%s: error %v is not ErrInvalidArgument", tt.name, tt.err)
		}
	}
}

func TestBuildLinksAllTypes(t *testing.T) {
	// Every supported tag links two equal samples and rejects two distant
	// ones at zero threshold.
	const width, height = 2, 1
	cases := []struct {
		typ  PixelType
		same any
		diff any
	}{
		{PixelInt8, []int8{3, 3}, []int8{3, 4}},
		{PixelUint8, []uint8{3, 3}, []uint8{3, 4}},
		{PixelInt16, []int16{3, 3}, []int16{3, 4}},
		{PixelUint16, []uint16{3, 3}, []uint16{3, 4}},
		{PixelInt32, []int32{3, 3}, []int32{3, 4}},
		{PixelUint32, []uint32{3, 3}, []uint32{3, 4}},
		{PixelInt64, []int64{3, 3}, []int64{3, 4}},
		{PixelUint64, []uint64{3, 3}, []uint64{3, 4}},
		{PixelFloat32, []float32{3, 3}, []float32{3, 4}},
		{PixelFloat64, []float64{3, 3}, []float64{3, 4}},
	}
	for _, tt := range cases {
		t.Run(tt.typ.String(), func(t *testing.T) {
			lnk := buildLinkMap(t, tt.same, tt.typ, width, height, 0)
			if lnk[0]&LinkEast == 0 {
				t.Errorf("equal samples not linked")
			}
			lnk = buildLinkMap(t, tt.diff, tt.typ, width, height, 0)
			if lnk[0]&LinkEast != 0 {
				t.Errorf("distinct samples linked at zero threshold")
			}
		})
	}
}
