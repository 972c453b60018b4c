// Package tesseract implements ocr.Engine on top of the Tesseract library.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Digits is the whitelist for called-number recognition.
const Digits = "0123456789"

// Engine runs one Tesseract client per call so concurrent detections never
// share native state.
type Engine struct {
	Language       string
	Whitelist      string
	PageSegMode    gosseract.PageSegMode
	TessdataPrefix string
}

// New returns an engine configured for a single line of digits.
func New(language string) *Engine {
	if language == "" {
		language = "eng"
	}
	return &Engine{
		Language:    language,
		Whitelist:   Digits,
		PageSegMode: gosseract.PSM_SINGLE_LINE,
	}
}

type result struct {
	text string
	err  error
}

// Recognize OCRs img. Tesseract cannot be interrupted, so on context expiry
// the call returns immediately and the native pass finishes in the background.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("tesseract panic: %v", r)}
			}
		}()
		text, err := e.run(buf.Bytes())
		done <- result{text: text, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

func (e *Engine) run(png []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if e.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.TessdataPrefix); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(e.Language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(e.PageSegMode); err != nil {
		return "", fmt.Errorf("set psm: %w", err)
	}
	if e.Whitelist != "" {
		if err := client.SetWhitelist(e.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}

// Version reports the linked Tesseract version.
func Version() string {
	return gosseract.Version()
}
