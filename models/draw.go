package models

import (
	"time"
)

// Draw is one recognised call. Number and Letter are zero when the digits
// fell outside 1..75 and the label was passed through unformatted.
type Draw struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	// DetectionID is the pipeline invocation id; debug rasters share it.
	DetectionID string `gorm:"size:36;uniqueIndex" json:"detection_id"`
	Label       string `gorm:"size:16;not null" json:"label"`
	Digits      string `gorm:"size:16;not null" json:"digits"`
	Letter      string `gorm:"size:1" json:"letter,omitempty"`
	Number      int    `gorm:"index" json:"number,omitempty"`
	Variant     string `gorm:"size:16" json:"variant"`
	// Source is "upload" for HTTP requests and "watch" for the folder watcher.
	Source   string `gorm:"size:16;index" json:"source"`
	FileName string `gorm:"size:255" json:"file_name,omitempty"`
	Notified bool   `gorm:"default:false" json:"notified"`
}
