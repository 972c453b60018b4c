package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bingocall/models"
)

func draws(labels ...string) []models.Draw {
	out := make([]models.Draw, len(labels))
	for i, l := range labels {
		out[i] = models.Draw{ID: uint(i + 1), Label: l, Variant: "gray", Source: "watch"}
	}
	return out
}

func TestDayBounds(t *testing.T) {
	start, end, err := DayBounds("2026-03-07")
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if !start.Equal(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)) || end.Sub(start) != 24*time.Hour {
		t.Fatalf("bounds = %v..%v", start, end)
	}
	if _, _, err := DayBounds("07/03/2026"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestSummarize(t *testing.T) {
	rows := draws("B1", "B1", "I16", "N42", "B1", "80", "O75")
	rows[2].Notified = true
	s := Summarize(time.Time{}, rows)
	if s.Records != 7 || s.Distinct != 5 || s.Notified != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.PerLetter["B"] != 1 || s.PerLetter["I"] != 1 || s.PerLetter["N"] != 1 || s.PerLetter["O"] != 1 || s.Other != 1 {
		t.Fatalf("per letter = %v other=%d", s.PerLetter, s.Other)
	}
	if len(s.Repeats) != 1 || s.Repeats[0] != "B1" {
		t.Fatalf("repeats = %v", s.Repeats)
	}
}

func TestWrite(t *testing.T) {
	rows := draws("G50", "G50", "B3")
	s := Summarize(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), rows)
	var buf bytes.Buffer
	Write(&buf, s, rows, true)
	out := buf.String()
	for _, want := range []string{"Draws on 2026-03-07", "records=3 distinct=2", "B=1 I=0 N=0 G=1 O=0", "2|G50|gray|watch"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
