package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DebugSink receives intermediate rasters for offline inspection.
type DebugSink interface {
	SaveDebug(ctx context.Context, name string, img image.Image) error
}

// DirSink writes debug rasters as PNG files under Dir.
type DirSink struct {
	Dir string
}

func (d DirSink) SaveDebug(_ context.Context, name string, img image.Image) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir debug dir: %w", err)
	}
	return imaging.Save(img, filepath.Join(d.Dir, name))
}

// MultiSink fans rasters out to several sinks and returns the first error.
type MultiSink []DebugSink

func (m MultiSink) SaveDebug(ctx context.Context, name string, img image.Image) error {
	var first error
	for _, s := range m {
		if err := s.SaveDebug(ctx, name, img); err != nil && first == nil {
			first = err
		}
	}
	return first
}
