package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestParseRect(t *testing.T) {
	r, err := parseRect("856, 93,792,35")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r != image.Rect(792, 35, 856, 93) {
		t.Fatalf("rect = %v", r)
	}
	for _, bad := range []string{"", "1,2,3", "1,2,3,x"} {
		if _, err := parseRect(bad); err == nil {
			t.Fatalf("parseRect(%q) should fail", bad)
		}
	}
}

func TestOutline(t *testing.T) {
	img := imaging.New(50, 40, color.White)
	out := outline(img, image.Rect(10, 10, 30, 20), 2)
	red := color.NRGBA{R: 255, A: 255}
	for _, p := range []image.Point{{10, 10}, {29, 19}, {11, 15}, {28, 15}, {20, 11}} {
		if got := out.NRGBAAt(p.X, p.Y); got != red {
			t.Fatalf("pixel %v = %v, want border", p, got)
		}
	}
	if got := out.NRGBAAt(20, 15); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("inside pixel painted: %v", got)
	}
	if got := out.NRGBAAt(5, 5); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("outside pixel painted: %v", got)
	}
}
