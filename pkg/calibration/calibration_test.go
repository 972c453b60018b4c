package calibration

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	if err := Default.Validate(); err != nil {
		t.Fatalf("default should be valid: %v", err)
	}
	bad := []Calibration{
		{Top: 0.2, Bottom: 0.2, Left: 0.1, Right: 0.5},
		{Top: 0.1, Bottom: 0.2, Left: 0.6, Right: 0.5},
		{Top: -0.1, Bottom: 0.2, Left: 0.1, Right: 0.5},
		{Top: 0.1, Bottom: 1.2, Left: 0.1, Right: 0.5},
		{Top: math.NaN(), Bottom: 0.2, Left: 0.1, Right: 0.5},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%+v: expected ErrInvalid got %v", c, err)
		}
	}
}

func TestFromSelection(t *testing.T) {
	// corners given bottom-right first, as a drag from the other direction would
	got, err := FromSelection(image.Pt(1000, 500), image.Rect(856, 93, 792, 35))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Calibration{Top: 0.070, Bottom: 0.186, Left: 0.792, Right: 0.856}
	if got != want {
		t.Fatalf("want %+v got %+v", want, got)
	}
}

func TestFromSelectionClipsAndRejectsEmpty(t *testing.T) {
	got, err := FromSelection(image.Pt(100, 100), image.Rect(50, 50, 200, 200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Right != 1 || got.Bottom != 1 {
		t.Fatalf("selection not clipped: %+v", got)
	}
	if _, err := FromSelection(image.Pt(100, 100), image.Rect(10, 10, 10, 40)); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection got %v", err)
	}
	if _, err := FromSelection(image.Pt(0, 0), image.Rect(0, 0, 1, 1)); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection for empty image got %v", err)
	}
}
