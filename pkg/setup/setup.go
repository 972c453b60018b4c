// Package setup builds the detection stack from configuration; shared by the
// server and the command-line tools.
package setup

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bingocall/pkg/calibration"
	"bingocall/pkg/config"
	"bingocall/pkg/history"
	"bingocall/pkg/ocr"
	"bingocall/pkg/ocr/tesseract"
	"bingocall/pkg/storage"
	"bingocall/process/relay"
)

// Store opens the file-backed calibration store.
func Store(cfg *config.Config) *calibration.FileStore {
	return calibration.NewFileStore(cfg.CalibrationFile)
}

// Engine returns the Tesseract engine described by cfg.
func Engine(cfg *config.Config) *tesseract.Engine {
	e := tesseract.New(cfg.OCR.Language)
	e.TessdataPrefix = cfg.OCR.Tessdata
	return e
}

// Pipeline wires store, engine and debug sinks. An unreachable MinIO bucket
// is logged and skipped; detection never depends on it.
func Pipeline(ctx context.Context, cfg *config.Config, store calibration.Store, engine ocr.Engine) *ocr.Pipeline {
	p := ocr.New(store, engine)
	p.Padding = cfg.OCR.Padding
	p.BlockSize = cfg.OCR.BlockSize
	p.Offset = cfg.OCR.Offset
	p.OCRTimeout = cfg.OCR.Timeout
	p.MinHeight = cfg.OCR.MinHeight
	p.Debug = DebugSink(ctx, cfg)
	return p
}

// DebugSink returns the configured sinks, or nil when none are set.
func DebugSink(ctx context.Context, cfg *config.Config) ocr.DebugSink {
	var sinks ocr.MultiSink
	if cfg.Debug.Dir != "" {
		sinks = append(sinks, ocr.DirSink{Dir: cfg.Debug.Dir})
	}
	if m := cfg.Debug.MinIO; m.Endpoint != "" {
		sink, err := storage.NewMinioSink(ctx, storage.Options{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			UseSSL:    m.UseSSL,
			Prefix:    "frames",
		})
		if err != nil {
			log.Printf("debug sink: minio disabled: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	}
	return sinks
}

// History opens the draw log; a nil recorder is returned when no DSN is set.
func History(cfg *config.Config) (*history.Recorder, error) {
	if cfg.Database.DSN == "" {
		return nil, nil
	}
	r, err := history.Open(cfg.Database.DSN, cfg.Database.AutoMigrate)
	if err != nil {
		return nil, fmt.Errorf("draw history: %w", err)
	}
	return r, nil
}

// Relay returns the chat notifier, or nil when no relay URL is configured.
func Relay(cfg *config.Config) (*relay.Notifier, error) {
	n, err := relay.New(relay.Config{
		URL:     cfg.Relay.URL,
		APIKey:  cfg.Relay.APIKey,
		Number:  cfg.Relay.Number,
		Delay:   cfg.Relay.Delay,
		Timeout: cfg.Relay.Timeout,
	})
	if errors.Is(err, relay.ErrNotConfigured) {
		return nil, nil
	}
	return n, err
}
