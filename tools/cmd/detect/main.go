// Command detect runs the called-number pipeline once on an image file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"bingocall/pkg/calibration"
	"bingocall/pkg/config"
	"bingocall/pkg/ocr"
	"bingocall/pkg/setup"
)

func main() {
	img := flag.String("img", "tmp/board.png", "screenshot to read")
	cfgPath := flag.String("config", "config.yaml", "optional YAML config file")
	top := flag.Float64("top", -1, "override top fraction")
	bottom := flag.Float64("bottom", -1, "override bottom fraction")
	left := flag.Float64("left", -1, "override left fraction")
	right := flag.Float64("right", -1, "override right fraction")
	debugDir := flag.String("debug", "", "write region and variants to this directory")
	verbose := flag.Bool("verbose", false, "log every OCR pass")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *debugDir != "" {
		cfg.Debug.Dir = *debugDir
	}
	ocr.Verbose = *verbose

	p, _ := filepath.Abs(*img)
	data, err := os.ReadFile(p)
	if err != nil {
		log.Fatalf("read %s: %v", p, err)
	}

	var override *calibration.Calibration
	switch set := countSet(*top, *bottom, *left, *right); set {
	case 0:
	case 4:
		override = &calibration.Calibration{Top: *top, Bottom: *bottom, Left: *left, Right: *right}
	default:
		log.Fatalf("override needs all of -top -bottom -left -right (got %d)", set)
	}

	ctx := context.Background()
	store := setup.Store(cfg)
	pipeline := setup.Pipeline(ctx, cfg, store, setup.Engine(cfg))
	fmt.Printf("Running detection on %s\n", p)
	res, err := pipeline.Detect(ctx, data, override)
	switch {
	case errors.Is(err, ocr.ErrEmptyRegion):
		log.Fatalf("calibration selects an empty region: %v", err)
	case err != nil:
		log.Fatalf("detect: %v", err)
	}
	fmt.Printf("region=%v id=%s\n", res.Region, res.ID)
	if !res.Detected() {
		fmt.Println("no number detected")
		os.Exit(1)
	}
	fmt.Printf("number=%s digits=%s variant=%s\n", res.Label, res.Digits, res.Variant)
}

func countSet(vals ...float64) int {
	n := 0
	for _, v := range vals {
		if v >= 0 {
			n++
		}
	}
	return n
}
