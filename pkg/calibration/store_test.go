package calibration

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestLoadFreshInstallReturnsDefault(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "calibration.json"))
	if got := s.Load(); got != Default {
		t.Fatalf("expected default %+v got %+v", Default, got)
	}
	if Default != (Calibration{Top: 0.070, Bottom: 0.187, Left: 0.792, Right: 0.856}) {
		t.Fatalf("default changed: %+v", Default)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "calibration.json"))
	want := Calibration{Top: 0.1234567, Bottom: 0.5, Left: 0.25, Right: 0.9999}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := s.Load(); got != want {
		t.Fatalf("round trip mismatch: want %+v got %+v", want, got)
	}
	// a second store over the same file sees the same values
	if got := NewFileStore(s.Path()).Load(); got != want {
		t.Fatalf("reopen mismatch: %+v", got)
	}
}

func TestLoadCorruptFallsBack(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"garbage.json": "{not json",
		"partial.json": `{"top":0.1,"bottom":0.2,"left":0.3}`,
		"wrong.json":   `{"top":"a","bottom":0.2,"left":0.3,"right":0.4}`,
	}
	for name, body := range cases {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if got := NewFileStore(p).Load(); got != Default {
			t.Fatalf("%s: expected default got %+v", name, got)
		}
	}
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// parent "directory" is a regular file, so MkdirAll/CreateTemp must fail
	s := NewFileStore(filepath.Join(blocker, "calibration.json"))
	err := s.Save(Default)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence got %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "calibration.json"))
	for i := 0; i < 3; i++ {
		if err := s.Save(Default); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only calibration.json, found %d entries", len(entries))
	}
}

func TestConcurrentSaveAndLoad(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "calibration.json"))
	a := Calibration{Top: 0.1, Bottom: 0.2, Left: 0.3, Right: 0.4}
	b := Calibration{Top: 0.5, Bottom: 0.6, Left: 0.7, Right: 0.8}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c := a
			if i%2 == 0 {
				c = b
			}
			_ = s.Save(c)
		}(i)
		go func() {
			defer wg.Done()
			got := s.Load()
			if got != a && got != b && got != Default {
				t.Errorf("torn read: %+v", got)
			}
		}()
	}
	wg.Wait()
}

func TestMemoryStore(t *testing.T) {
	var m MemoryStore
	if m.Load() != Default {
		t.Fatalf("empty memory store should return default")
	}
	c := Calibration{Top: 0, Bottom: 1, Left: 0, Right: 1}
	_ = m.Save(c)
	if m.Load() != c {
		t.Fatalf("memory store lost value")
	}
}
