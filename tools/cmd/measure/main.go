// Command measure turns a pixel rectangle picked on a screenshot into
// calibration fractions, writes an annotated preview and can save the result.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"strconv"
	"strings"

	"bingocall/pkg/calibration"
	"bingocall/pkg/config"

	"github.com/disintegration/imaging"
)

func main() {
	imgPath := flag.String("img", "", "screenshot to measure")
	rect := flag.String("rect", "", "selection as x1,y1,x2,y2 in pixels")
	preview := flag.String("preview", "", "write the screenshot with the selection outlined here")
	save := flag.Bool("save", false, "store the result in the calibration file")
	cfgPath := flag.String("config", "config.yaml", "optional YAML config file")
	flag.Parse()

	if *imgPath == "" || *rect == "" {
		flag.Usage()
		log.Fatal("-img and -rect are required")
	}
	sel, err := parseRect(*rect)
	if err != nil {
		log.Fatalf("rect: %v", err)
	}
	img, err := imaging.Open(*imgPath, imaging.AutoOrientation(true))
	if err != nil {
		log.Fatalf("open %s: %v", *imgPath, err)
	}
	cal, err := calibration.FromSelection(img.Bounds().Size(), sel)
	if err != nil {
		log.Fatalf("measure: %v", err)
	}
	fmt.Printf("top=%.3f bottom=%.3f left=%.3f right=%.3f\n", cal.Top, cal.Bottom, cal.Left, cal.Right)

	if *preview != "" {
		if err := imaging.Save(outline(img, sel, 2), *preview); err != nil {
			log.Fatalf("preview: %v", err)
		}
		fmt.Printf("preview written to %s\n", *preview)
	}
	if *save {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if err := cal.Validate(); err != nil {
			log.Fatalf("not saving: %v", err)
		}
		store := calibration.NewFileStore(cfg.CalibrationFile)
		if err := store.Save(cal); err != nil {
			log.Fatalf("save: %v", err)
		}
		fmt.Printf("saved to %s\n", store.Path())
	}
}

func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("want x1,y1,x2,y2, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}

// outline draws a red border of the given width just inside sel.
func outline(img image.Image, sel image.Rectangle, width int) *image.NRGBA {
	out := imaging.Clone(img)
	sel = sel.Canon().Intersect(out.Bounds())
	if sel.Empty() {
		return out
	}
	red := color.NRGBA{R: 255, A: 255}
	w, h := sel.Dx(), sel.Dy()
	bw, bh := min(width, w), min(width, h)
	out = imaging.Paste(out, imaging.New(w, bh, red), sel.Min)
	out = imaging.Paste(out, imaging.New(w, bh, red), image.Pt(sel.Min.X, sel.Max.Y-bh))
	out = imaging.Paste(out, imaging.New(bw, h, red), sel.Min)
	out = imaging.Paste(out, imaging.New(bw, h, red), image.Pt(sel.Max.X-bw, sel.Min.Y))
	return out
}
