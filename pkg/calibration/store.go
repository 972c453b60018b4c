package calibration

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the calibration in a small JSON document.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore returns a store backed by path. The file need not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// document uses pointers so a missing key can be told apart from a zero value.
type document struct {
	Top    *float64 `json:"top"`
	Bottom *float64 `json:"bottom"`
	Left   *float64 `json:"left"`
	Right  *float64 `json:"right"`
}

// Load reads the file, falling back to Default when it is absent, unreadable,
// malformed or missing any of the four keys.
func (s *FileStore) Load() Calibration {
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("calibration: read %s: %v (using default)", s.path, err)
		}
		return Default
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("calibration: parse %s: %v (using default)", s.path, err)
		return Default
	}
	if doc.Top == nil || doc.Bottom == nil || doc.Left == nil || doc.Right == nil {
		log.Printf("calibration: %s is missing keys (using default)", s.path)
		return Default
	}
	return Calibration{Top: *doc.Top, Bottom: *doc.Bottom, Left: *doc.Left, Right: *doc.Right}
}

// Save replaces the file. The new content is written to a sibling temp file
// and renamed over the target so readers never see a partial document.
func (s *FileStore) Save(c Calibration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	tmp, err := os.CreateTemp(dir, ".calibration-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: rename: %v", ErrPersistence, err)
	}
	return nil
}

// MemoryStore is an in-process Store, used in tests and when no file is configured.
type MemoryStore struct {
	mu  sync.RWMutex
	cal *Calibration
}

func (m *MemoryStore) Load() Calibration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cal == nil {
		return Default
	}
	return *m.cal
}

func (m *MemoryStore) Save(c Calibration) error {
	m.mu.Lock()
	m.cal = &c
	m.mu.Unlock()
	return nil
}
