// Package calibration holds the fractional bounds of the called-number box
// and persists them between runs.
package calibration

import (
	"fmt"
	"image"
	"math"
)

// Calibration is the called-number box expressed as fractions of the
// screenshot height (Top, Bottom) and width (Left, Right).
type Calibration struct {
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
}

// Default matches the caller board layout the box was first measured on.
var Default = Calibration{Top: 0.070, Bottom: 0.187, Left: 0.792, Right: 0.856}

// Store loads and saves the active calibration.
type Store interface {
	// Load never fails; missing or corrupt storage yields Default.
	Load() Calibration
	Save(Calibration) error
}

// Validate checks that every fraction is finite, inside [0,1] and that
// top < bottom and left < right.
func (c Calibration) Validate() error {
	for _, v := range []float64{c.Top, c.Bottom, c.Left, c.Right} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %v outside [0,1]", ErrInvalid, v)
		}
	}
	if c.Top >= c.Bottom {
		return fmt.Errorf("%w: top %.3f not above bottom %.3f", ErrInvalid, c.Top, c.Bottom)
	}
	if c.Left >= c.Right {
		return fmt.Errorf("%w: left %.3f not before right %.3f", ErrInvalid, c.Left, c.Right)
	}
	return nil
}

// FromSelection converts a pixel rectangle picked over a screenshot of the
// given size into fractions rounded to three decimals. Corner order does not
// matter; the selection is clipped to the image.
func FromSelection(size image.Point, sel image.Rectangle) (Calibration, error) {
	if size.X <= 0 || size.Y <= 0 {
		return Calibration{}, fmt.Errorf("%w: image is %dx%d", ErrEmptySelection, size.X, size.Y)
	}
	sel = sel.Canon().Intersect(image.Rect(0, 0, size.X, size.Y))
	if sel.Empty() {
		return Calibration{}, ErrEmptySelection
	}
	w, h := float64(size.X), float64(size.Y)
	return Calibration{
		Top:    round3(float64(sel.Min.Y) / h),
		Bottom: round3(float64(sel.Max.Y) / h),
		Left:   round3(float64(sel.Min.X) / w),
		Right:  round3(float64(sel.Max.X) / w),
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
