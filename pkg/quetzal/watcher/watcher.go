// Package watcher re-runs a callback when program files change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long writes must settle before a change fires.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors files for changes and calls OnChange once per burst of
// writes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	onChange func(path string)
	debounce time.Duration
	logger   *zap.SugaredLogger

	mu        sync.Mutex
	changeSeq uint64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period; d <= 0 keeps DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a watcher for files and starts watching their directories.
// Directories are watched rather than the files themselves so that editors
// which save by replacing the file are still seen.
func New(files []string, onChange func(path string), opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]bool),
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(w)
	}

	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Infow("watching", "dir", dir)
	}
	return w, nil
}

// Run watches until ctx is cancelled. OnChange runs on the calling
// goroutine, so a slow callback delays the next change.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			pending = abs
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.mu.Lock()
			w.changeSeq++
			w.mu.Unlock()
			w.logger.Infow("changed", "file", pending)
			w.onChange(pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorw("watcher error", "error", err)
		}
	}
}

// Changes returns how many times OnChange has fired.
func (w *Watcher) Changes() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changeSeq
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
