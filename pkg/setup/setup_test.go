package setup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bingocall/pkg/calibration"
	"bingocall/pkg/config"
	"bingocall/pkg/ocr"
)

func TestPipelineCarriesTuning(t *testing.T) {
	cfg := config.Defaults()
	cfg.OCR.Padding = 9
	cfg.OCR.BlockSize = 15
	cfg.OCR.Offset = 3
	cfg.OCR.Timeout = 2 * time.Second
	cfg.OCR.MinHeight = 64

	p := Pipeline(context.Background(), &cfg, &calibration.MemoryStore{}, nil)
	if p.Padding != 9 || p.BlockSize != 15 || p.Offset != 3 || p.OCRTimeout != 2*time.Second || p.MinHeight != 64 {
		t.Fatalf("tuning not applied: %+v", p)
	}
	if p.Debug != nil {
		t.Fatalf("no sinks configured, got %T", p.Debug)
	}
}

func TestDebugSinkDir(t *testing.T) {
	cfg := config.Defaults()
	cfg.Debug.Dir = filepath.Join(t.TempDir(), "debug")
	sink := DebugSink(context.Background(), &cfg)
	if _, ok := sink.(ocr.DirSink); !ok {
		t.Fatalf("sink = %T, want ocr.DirSink", sink)
	}
}

func TestOptionalComponentsDisabled(t *testing.T) {
	cfg := config.Defaults()
	h, err := History(&cfg)
	if err != nil || h != nil {
		t.Fatalf("history without DSN = %v, %v", h, err)
	}
	r, err := Relay(&cfg)
	if err != nil || r != nil {
		t.Fatalf("relay without URL = %v, %v", r, err)
	}
}

func TestRelayConfigured(t *testing.T) {
	cfg := config.Defaults()
	cfg.Relay.URL = "http://relay.local/message/sendText/x"
	cfg.Relay.Number = "5511999999999"
	r, err := Relay(&cfg)
	if err != nil || r == nil {
		t.Fatalf("relay = %v, %v", r, err)
	}
}

func TestStoreUsesConfiguredPath(t *testing.T) {
	cfg := config.Defaults()
	cfg.CalibrationFile = filepath.Join(t.TempDir(), "cal.json")
	if got := Store(&cfg).Path(); got != cfg.CalibrationFile {
		t.Fatalf("path = %q", got)
	}
}
