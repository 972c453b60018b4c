// Package report summarises a day of recorded draws.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"bingocall/models"
	"bingocall/pkg/bingo"

	"gorm.io/gorm"
)

// Summary counts one day of draws.
type Summary struct {
	Day      time.Time
	Records  int
	Distinct int
	// PerLetter counts distinct numbers per column; unformatted labels are
	// counted under Other.
	PerLetter map[string]int
	Other     int
	Repeats   []string
	Notified  int
}

// DayBounds returns the UTC start and end of day (YYYY-MM-DD).
func DayBounds(day string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid day format, expected YYYY-MM-DD: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1), nil
}

// Load fetches the draws created in [start, end), oldest first.
func Load(ctx context.Context, gdb *gorm.DB, start, end time.Time) ([]models.Draw, error) {
	var rows []models.Draw
	err := gdb.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch draws: %w", err)
	}
	return rows, nil
}

// Summarize counts rows. A label seen again after another label came in
// between is reported as a repeat; consecutive duplicates are not.
func Summarize(day time.Time, rows []models.Draw) Summary {
	s := Summary{Day: day, Records: len(rows), PerLetter: map[string]int{}}
	seen := map[string]bool{}
	prev := ""
	for _, r := range rows {
		if r.Notified {
			s.Notified++
		}
		if r.Label == prev {
			continue
		}
		prev = r.Label
		if seen[r.Label] {
			s.Repeats = append(s.Repeats, r.Label)
			continue
		}
		seen[r.Label] = true
		s.Distinct++
		if l, _, ok := bingo.Parse(r.Label); ok {
			s.PerLetter[l]++
		} else {
			s.Other++
		}
	}
	return s
}

// Write prints s and, when list is set, one line per row.
func Write(w io.Writer, s Summary, rows []models.Draw, list bool) {
	fmt.Fprintf(w, "Draws on %s (UTC):\n", s.Day.Format("2006-01-02"))
	fmt.Fprintf(w, "  records=%d distinct=%d notified=%d\n", s.Records, s.Distinct, s.Notified)
	var cols []string
	for _, l := range bingo.Letters {
		cols = append(cols, fmt.Sprintf("%c=%d", l, s.PerLetter[string(l)]))
	}
	if s.Other > 0 {
		cols = append(cols, fmt.Sprintf("other=%d", s.Other))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(cols, " "))
	if len(s.Repeats) > 0 {
		rep := append([]string(nil), s.Repeats...)
		sort.Strings(rep)
		fmt.Fprintf(w, "  repeats=%s\n", strings.Join(rep, ","))
	}
	if list {
		for _, r := range rows {
			fmt.Fprintf(w, "%d|%s|%s|%s|%s|%s\n", r.ID, r.Label, r.Variant, r.Source, r.FileName, r.CreatedAt.Format(time.RFC3339))
		}
	}
}
