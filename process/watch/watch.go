// Package watch follows a screenshot folder and reads the called number out
// of every new frame.
package watch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bingocall/pkg/ocr"

	"github.com/corona10/goimagehash"
	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounce        = 300 * time.Millisecond
	DefaultMaxHashDistance = 2
)

// Event is emitted for every frame that produced digits.
type Event struct {
	File   string
	Result ocr.Result
	// Changed reports whether the label differs from the previous detection.
	Changed bool
}

// Handler receives detections. It runs on a worker goroutine.
type Handler func(ctx context.Context, ev Event)

type Watcher struct {
	Pipeline *ocr.Pipeline
	Dir      string
	// ProcessedDir receives handled frames; empty leaves them in place.
	ProcessedDir string
	// Workers defaults to 1 so detections are reported in capture order.
	Workers int
	// MaxHashDistance is the perceptual-hash distance under which a region
	// counts as unchanged and is skipped; negative disables the check.
	MaxHashDistance int
	Debounce        time.Duration
	OnDetect        Handler
	Verbose         bool

	mu        sync.Mutex
	lastHash  *goimagehash.ImageHash
	lastLabel string
}

// Run processes the files already in Dir, then new ones as they appear,
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Pipeline == nil {
		return errors.New("watch: pipeline is required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}
	log.Printf("WATCH %s (workers=%d, debounced)", w.Dir, w.workers())

	files := make(chan string, 256)
	var wg sync.WaitGroup
	for i := 0; i < w.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range files {
				if err := w.ProcessFile(ctx, name); err != nil {
					log.Printf("WATCH %s: %v", name, err)
				}
			}
		}()
	}

	err = w.feed(ctx, fw, files)
	close(files)
	wg.Wait()
	return err
}

// feed queues the initial scan, then debounced create/write events.
func (w *Watcher) feed(ctx context.Context, fw *fsnotify.Watcher, files chan<- string) error {
	for _, name := range listImageFiles(w.Dir) {
		select {
		case files <- name:
		case <-ctx.Done():
			return nil
		}
	}

	pending := map[string]time.Time{}
	ticker := time.NewTicker(w.debounce() / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isSupportedExt(name) {
				continue
			}
			// each write pushes the deadline out until the file is stable
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) < w.debounce() {
					continue
				}
				delete(pending, name)
				select {
				case files <- name:
				case <-ctx.Done():
					return nil
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("WATCH error: %v", err)
		}
	}
}

// ProcessFile runs detection on one frame in Dir.
func (w *Watcher) ProcessFile(ctx context.Context, name string) error {
	path := filepath.Join(w.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.logV("WATCH %s vanished before processing", name)
			return nil
		}
		return err
	}
	img, err := ocr.DecodeImage(data)
	if err != nil {
		return err
	}
	cal := w.Pipeline.CurrentCalibration()
	roi, _, err := w.Pipeline.Region(img, cal)
	if err != nil {
		return err
	}
	hash, same := w.compareRegion(roi)
	if same {
		w.logV("WATCH %s skipped: region unchanged", name)
		return w.finish(path, name)
	}

	res, err := w.Pipeline.DetectImage(ctx, img, cal)
	if err != nil {
		// the hash is kept only for frames that were read, so a retry of the
		// same board still reaches the engine
		return err
	}
	w.rememberRegion(hash)
	if !res.Detected() {
		w.logV("WATCH %s no number", name)
		return w.finish(path, name)
	}

	w.mu.Lock()
	changed := res.Label != w.lastLabel
	w.lastLabel = res.Label
	w.mu.Unlock()
	log.Printf("WATCH %s -> %s (variant=%s changed=%t)", name, res.Label, res.Variant, changed)

	if w.OnDetect != nil {
		w.OnDetect(ctx, Event{File: name, Result: res, Changed: changed})
	}
	return w.finish(path, name)
}

// compareRegion hashes roi and reports whether it matches the last region
// that was read successfully. A hashing failure never skips a frame.
func (w *Watcher) compareRegion(roi image.Image) (*goimagehash.ImageHash, bool) {
	if w.MaxHashDistance < 0 {
		return nil, false
	}
	hash, err := goimagehash.PerceptionHash(roi)
	if err != nil {
		w.logV("WATCH phash failed: %v", err)
		return nil, false
	}
	w.mu.Lock()
	prev := w.lastHash
	w.mu.Unlock()
	if prev == nil {
		return hash, false
	}
	dist, err := prev.Distance(hash)
	if err != nil {
		return hash, false
	}
	return hash, dist <= w.MaxHashDistance
}

func (w *Watcher) rememberRegion(hash *goimagehash.ImageHash) {
	if hash == nil {
		return
	}
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()
}

func (w *Watcher) finish(path, name string) error {
	if w.ProcessedDir == "" {
		return nil
	}
	if err := moveToProcessed(path, w.ProcessedDir, name); err != nil {
		return fmt.Errorf("move processed: %w", err)
	}
	return nil
}

func (w *Watcher) workers() int {
	if w.Workers <= 0 {
		return 1
	}
	return w.Workers
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *Watcher) logV(format string, args ...any) {
	if w.Verbose {
		log.Printf(format, args...)
	}
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	// screenshot names carry a timestamp, so lexical order is capture order
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
		return true
	}
	return false
}

// moveToProcessed renames src into dir, falling back to copy+remove across
// filesystems.
func moveToProcessed(src, dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, name)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
