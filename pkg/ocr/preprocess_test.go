package ocr

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
)

func TestGaussianKernelNormalised(t *testing.T) {
	k := gaussianKernel(11)
	if len(k) != 11 {
		t.Fatalf("kernel size %d", len(k))
	}
	sum := 0.0
	for i, v := range k {
		sum += v
		if math.Abs(v-k[len(k)-1-i]) > 1e-12 {
			t.Fatalf("kernel not symmetric at %d", i)
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("kernel sums to %f", sum)
	}
	if k[5] <= k[4] {
		t.Fatalf("kernel should peak at centre")
	}
}

func TestToGrayOriginAndLuma(t *testing.T) {
	img := imaging.New(4, 2, color.NRGBA{255, 255, 255, 255})
	img.Set(1, 1, color.NRGBA{0, 0, 0, 255})
	g := toGray(img)
	if g.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds %v", g.Bounds())
	}
	if g.GrayAt(0, 0).Y != 255 || g.GrayAt(1, 1).Y != 0 {
		t.Fatalf("unexpected luma %d %d", g.GrayAt(0, 0).Y, g.GrayAt(1, 1).Y)
	}
}

func TestAdaptiveThresholdInvertsInk(t *testing.T) {
	// white card with a dark 6x6 blob in the middle
	img := imaging.New(30, 30, color.NRGBA{230, 230, 230, 255})
	for y := 12; y < 18; y++ {
		for x := 12; x < 18; x++ {
			img.Set(x, y, color.NRGBA{20, 20, 20, 255})
		}
	}
	bin := adaptiveThreshold(toGray(img), 11, 2)
	if bin.GrayAt(15, 15).Y != 255 {
		t.Fatalf("ink should become foreground (255), got %d", bin.GrayAt(15, 15).Y)
	}
	if bin.GrayAt(2, 2).Y != 0 {
		t.Fatalf("flat background should be 0, got %d", bin.GrayAt(2, 2).Y)
	}
}

func TestAdaptiveThresholdUniformIsBlank(t *testing.T) {
	img := imaging.New(20, 20, color.NRGBA{128, 128, 128, 255})
	bin := adaptiveThreshold(toGray(img), 11, 2)
	for _, p := range bin.Pix {
		if p != 0 {
			t.Fatalf("uniform image should threshold to all background")
		}
	}
}

func TestAdaptiveThresholdEvenBlockRoundsUp(t *testing.T) {
	img := imaging.New(5, 5, color.NRGBA{200, 200, 200, 255})
	bin := adaptiveThreshold(toGray(img), 4, 2)
	if bin.Bounds().Dx() != 5 {
		t.Fatalf("unexpected size %v", bin.Bounds())
	}
}

func TestUpscale(t *testing.T) {
	img := imaging.New(10, 8, color.NRGBA{0, 0, 0, 255})
	if up := upscale(img, 0); up.Bounds().Dy() != 8 {
		t.Fatalf("disabled upscale changed size")
	}
	if up := upscale(img, 40); up.Bounds().Dy() != 40 || up.Bounds().Dx() != 50 {
		t.Fatalf("expected 50x40 got %v", up.Bounds())
	}
	if up := upscale(img, 4); up.Bounds().Dy() != 8 {
		t.Fatalf("taller image should not shrink")
	}
}
