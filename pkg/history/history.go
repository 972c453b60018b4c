// Package history keeps the log of recognised draws in Postgres.
package history

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bingocall/models"
	"bingocall/pkg/bingo"
	"bingocall/pkg/ocr"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrDisabled is returned by a nil Recorder.
var ErrDisabled = errors.New("draw history disabled")

// DefaultLimit caps Recent when no limit is given.
const DefaultLimit = 50

// Recorder writes and lists draws. A nil *Recorder is valid and records nothing.
type Recorder struct {
	db *gorm.DB
}

// Open connects to dsn and, when migrate is set, creates the draws table.
// Migration failures are logged, not returned, so a read-only role still works.
func Open(dsn string, migrate bool) (*Recorder, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty DSN", ErrDisabled)
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres database: %w", err)
	}
	r := New(gdb)
	if migrate {
		if err := r.Migrate(); err != nil {
			log.Printf("migration warning (draws): %v", err)
		}
	}
	return r, nil
}

// New wraps an existing connection.
func New(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Migrate() error {
	if r == nil {
		return ErrDisabled
	}
	return r.db.AutoMigrate(&models.Draw{})
}

// DB exposes the underlying connection.
func (r *Recorder) DB() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.db
}

// FromResult builds a draw row for a successful detection.
func FromResult(res ocr.Result, source, fileName string) models.Draw {
	d := models.Draw{
		DetectionID: res.ID,
		Label:       res.Label,
		Digits:      res.Digits,
		Variant:     res.Variant,
		Source:      source,
		FileName:    fileName,
	}
	if l, n, ok := bingo.Parse(res.Label); ok {
		d.Letter, d.Number = l, n
	}
	return d
}

// Record stores d. A nil recorder is a no-op.
func (r *Recorder) Record(ctx context.Context, d *models.Draw) error {
	if r == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("record draw %s: %w", d.Label, err)
	}
	return nil
}

// MarkNotified flags a stored draw as relayed.
func (r *Recorder) MarkNotified(ctx context.Context, id uint) error {
	if r == nil || id == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Draw{}).Where("id = ?", id).Update("notified", true).Error
}

// Recent returns the newest draws first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]models.Draw, error) {
	if r == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 || limit > 500 {
		limit = DefaultLimit
	}
	var items []models.Draw
	if err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("query draws: %w", err)
	}
	return items, nil
}
