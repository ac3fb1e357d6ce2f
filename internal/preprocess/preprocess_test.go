package preprocess

import (
	"image"
	"image/color"
	"testing"
)

func grayRamp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x * 8) % 256)})
		}
	}
	return img
}

func TestGrayscale_preservesBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 6))
	g := Grayscale(src)
	if g.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v, want %v", g.Bounds(), src.Bounds())
	}
}

func TestGrayscale_passthroughForGray(t *testing.T) {
	src := grayRamp(8, 8)
	if Grayscale(src) != src {
		t.Error("gray input should be returned as-is")
	}
}

func TestEqualize_stretchesRange(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	for x, v := range []uint8{100, 110, 120, 130} {
		img.SetGray(x, 0, color.Gray{Y: v})
	}
	eq := Equalize(img)
	lo, hi := eq.GrayAt(0, 0).Y, eq.GrayAt(3, 0).Y
	if hi != 255 {
		t.Errorf("max = %d, want 255", hi)
	}
	if hi-lo <= 30 {
		t.Errorf("range %d..%d not stretched", lo, hi)
	}
}

func TestEqualize_flatImageUnchanged(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetGray(x, y, color.Gray{Y: 42})
		}
	}
	eq := Equalize(img)
	if eq.GrayAt(1, 1).Y != 42 {
		t.Errorf("flat image changed: %d", eq.GrayAt(1, 1).Y)
	}
}

func TestInvert_roundTrips(t *testing.T) {
	img := grayRamp(8, 4)
	back := Invert(Invert(img))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			if back.GrayAt(x, y) != img.GrayAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed after double invert", x, y)
			}
		}
	}
}

func TestAdaptiveThreshold_binarizes(t *testing.T) {
	out := AdaptiveThreshold(grayRamp(32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := out.GrayAt(x, y).Y
			if v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
}

func TestUpscale_grows(t *testing.T) {
	out := Upscale(grayRamp(10, 10))
	if out.Bounds().Dx() != 15 || out.Bounds().Dy() != 15 {
		t.Errorf("bounds = %v, want 15x15", out.Bounds())
	}
}

func TestEnhance_producesGray(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x * 12), G: uint8(y * 12), B: 80, A: 255})
		}
	}
	out := Enhance(src)
	if out.Bounds().Dx() != 30 || out.Bounds().Dy() != 30 {
		t.Errorf("bounds = %v, want 30x30", out.Bounds())
	}
}
