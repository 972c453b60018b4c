package ocr

import (
	"fmt"
	"image"
	"math"

	"bingocall/pkg/calibration"

	"github.com/disintegration/imaging"
)

// DefaultPadding is the margin in pixels added around the calibrated box.
const DefaultPadding = 5

// snapEps absorbs float noise such as 0.07*1000 = 70.00000000000001.
const snapEps = 1e-9

// RegionBounds converts a calibration into pixel bounds for an image of the
// given size, widened by pad and clamped to the image.
func RegionBounds(size image.Point, cal calibration.Calibration, pad int) (image.Rectangle, error) {
	for _, v := range []float64{cal.Top, cal.Bottom, cal.Left, cal.Right} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return image.Rectangle{}, fmt.Errorf("%w: non-finite calibration %+v", ErrEmptyRegion, cal)
		}
	}
	// A zero-height or inverted box stays empty no matter how much padding is added.
	if cal.Top >= cal.Bottom || cal.Left >= cal.Right {
		return image.Rectangle{}, fmt.Errorf("%w: degenerate calibration %+v", ErrEmptyRegion, cal)
	}
	h, w := size.Y, size.X
	top := clamp(floorSnap(float64(h)*cal.Top)-pad, 0, h)
	bottom := clamp(ceilSnap(float64(h)*cal.Bottom)+pad, 0, h)
	left := clamp(floorSnap(float64(w)*cal.Left)-pad, 0, w)
	right := clamp(ceilSnap(float64(w)*cal.Right)+pad, 0, w)
	if top >= bottom || left >= right {
		return image.Rectangle{}, fmt.Errorf("%w: rows %d..%d cols %d..%d of %dx%d", ErrEmptyRegion, top, bottom, left, right, w, h)
	}
	return image.Rect(left, top, right, bottom), nil
}

// ExtractRegion crops the calibrated box out of img. The returned rectangle is
// relative to img's origin.
func ExtractRegion(img image.Image, cal calibration.Calibration, pad int) (*image.NRGBA, image.Rectangle, error) {
	b := img.Bounds()
	r, err := RegionBounds(b.Size(), cal, pad)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	roi := imaging.Crop(img, r.Add(b.Min))
	return roi, r, nil
}

func floorSnap(v float64) int {
	return int(math.Floor(v + snapEps))
}

func ceilSnap(v float64) int {
	return int(math.Ceil(v - snapEps))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
