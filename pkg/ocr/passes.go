package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"
)

// Engine reads text from a raster. Implementations must honour the
// digits-only, single-line setup expected by the recognizer.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// EngineFunc adapts a plain function to Engine.
type EngineFunc func(ctx context.Context, img image.Image) (string, error)

func (f EngineFunc) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// Variant is one preprocessed rendition of the region handed to the engine.
type Variant struct {
	Name  string
	Image image.Image
}

// Variant names, in the order they are tried.
const (
	VariantGray   = "gray"
	VariantBinary = "binary"
)

// buildVariants returns the grayscale and inverse adaptive-threshold
// renditions of roi.
func buildVariants(roi image.Image, block int, offset float64) []Variant {
	gray := toGray(roi)
	bin := adaptiveThreshold(gray, block, offset)
	return []Variant{
		{Name: VariantGray, Image: gray},
		{Name: VariantBinary, Image: bin},
	}
}

// runPasses OCRs each variant in order and stops at the first one that yields
// at least one digit. An empty result with nil error means nothing was read.
func runPasses(ctx context.Context, engine Engine, timeout time.Duration, variants []Variant) (string, string, error) {
	for _, v := range variants {
		text, err := recognizeOnce(ctx, engine, timeout, v.Image)
		if err != nil {
			return "", "", fmt.Errorf("%w: %s pass: %w", ErrRecognize, v.Name, err)
		}
		digits := onlyDigits(text)
		logV("OCR pass %s raw=%q digits=%q", v.Name, snippet(text, 40), digits)
		if digits != "" {
			return digits, v.Name, nil
		}
	}
	return "", "", nil
}

// recognizeOnce runs a single engine call under its own deadline and turns
// an engine panic into an error.
func recognizeOnce(ctx context.Context, engine Engine, timeout time.Duration, img image.Image) (text string, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return engine.Recognize(ctx, img)
}

// Verbose enables per-pass logging.
var Verbose bool

func logV(format string, args ...any) {
	if Verbose {
		log.Printf(format, args...)
	}
}
