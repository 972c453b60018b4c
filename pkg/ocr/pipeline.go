// Package ocr reads the called bingo number out of a caller-board screenshot:
// crop the calibrated box, build grayscale and thresholded variants, and OCR
// them for digits.
package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"bingocall/pkg/bingo"
	"bingocall/pkg/calibration"

	"github.com/google/uuid"
)

// DefaultOCRTimeout bounds a single engine pass.
const DefaultOCRTimeout = 10 * time.Second

// Pipeline turns screenshots into bingo labels. A zero BlockSize, Offset or
// OCRTimeout falls back to the package default; Padding is used as given.
type Pipeline struct {
	Store  calibration.Store
	Engine Engine

	Padding    int
	BlockSize  int
	Offset     float64
	OCRTimeout time.Duration
	// MinHeight upscales shorter regions before OCR; 0 disables.
	MinHeight int
	// Debug, when set, receives the region and both variants.
	Debug DebugSink
}

// New returns a pipeline with default tuning.
func New(store calibration.Store, engine Engine) *Pipeline {
	return &Pipeline{
		Store:      store,
		Engine:     engine,
		Padding:    DefaultPadding,
		BlockSize:  DefaultBlockSize,
		Offset:     DefaultOffset,
		OCRTimeout: DefaultOCRTimeout,
	}
}

// Result is the outcome of one detection. Empty Digits means nothing was
// read, which is normal between draws.
type Result struct {
	ID      string          `json:"id"`
	Digits  string          `json:"digits"`
	Label   string          `json:"number"`
	Variant string          `json:"variant,omitempty"`
	Region  image.Rectangle `json:"-"`
}

// Detected reports whether any digits were recognised.
func (r Result) Detected() bool { return r.Digits != "" }

// Detect decodes data and reads the called number. When override is nil the
// stored calibration is used.
func (p *Pipeline) Detect(ctx context.Context, data []byte, override *calibration.Calibration) (Result, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return Result{}, err
	}
	return p.DetectImage(ctx, img, p.calibrationFor(override))
}

// DetectImage reads the called number from an already decoded image.
func (p *Pipeline) DetectImage(ctx context.Context, img image.Image, cal calibration.Calibration) (Result, error) {
	if p.Engine == nil {
		return Result{}, fmt.Errorf("%w: no engine configured", ErrRecognize)
	}
	roi, rect, err := p.Region(img, cal)
	if err != nil {
		return Result{}, err
	}
	res := Result{ID: uuid.NewString(), Region: rect}

	variants := buildVariants(upscale(roi, p.MinHeight), p.blockSize(), p.offset())
	p.saveDebug(ctx, res.ID, roi, variants)

	digits, variant, err := runPasses(ctx, p.Engine, p.timeout(), variants)
	if err != nil {
		return res, err
	}
	res.Digits = digits
	res.Variant = variant
	if digits != "" {
		res.Label = bingo.Format(digits)
	}
	return res, nil
}

// Region crops the padded calibrated box out of img, as DetectImage does.
func (p *Pipeline) Region(img image.Image, cal calibration.Calibration) (*image.NRGBA, image.Rectangle, error) {
	return ExtractRegion(img, cal, p.padding())
}

func (p *Pipeline) calibrationFor(override *calibration.Calibration) calibration.Calibration {
	if override != nil {
		return *override
	}
	if p.Store == nil {
		return calibration.Default
	}
	return p.Store.Load()
}

// CurrentCalibration returns the calibration Detect would use without an override.
func (p *Pipeline) CurrentCalibration() calibration.Calibration {
	return p.calibrationFor(nil)
}

func (p *Pipeline) saveDebug(ctx context.Context, id string, roi image.Image, variants []Variant) {
	if p.Debug == nil {
		return
	}
	if err := p.Debug.SaveDebug(ctx, id+"_roi.png", roi); err != nil {
		log.Printf("debug sink: %v", err)
		return
	}
	for _, v := range variants {
		if err := p.Debug.SaveDebug(ctx, id+"_"+v.Name+".png", v.Image); err != nil {
			log.Printf("debug sink: %v", err)
			return
		}
	}
}

func (p *Pipeline) padding() int {
	if p.Padding < 0 {
		return 0
	}
	return p.Padding
}

func (p *Pipeline) blockSize() int {
	if p.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return p.BlockSize
}

func (p *Pipeline) offset() float64 {
	if p.Offset == 0 {
		return DefaultOffset
	}
	return p.Offset
}

func (p *Pipeline) timeout() time.Duration {
	if p.OCRTimeout <= 0 {
		return DefaultOCRTimeout
	}
	return p.OCRTimeout
}
