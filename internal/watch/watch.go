// Package watch re-runs the library scan when new video files land in the
// source tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/Digital-Shane/tvshelf/internal/media"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long the tree must stay quiet before a scan runs.
const DefaultSettle = 30 * time.Second

// ScanFunc runs one scan and returns the number of files moved.
type ScanFunc func(ctx context.Context) int

// Watcher serializes scans of a source tree, triggered by file activity.
type Watcher struct {
	fs     *fsnotify.Watcher
	root   string
	settle time.Duration
	scan   ScanFunc
	after  func(ctx context.Context, moved int)
	log    zerolog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithAfterScan registers fn to run after every scan.
func WithAfterScan(fn func(ctx context.Context, moved int)) Option {
	return func(w *Watcher) {
		w.after = fn
	}
}

// New creates a watcher for root. Call Run to start it and Close to release it.
func New(root string, scan ScanFunc, logger zerolog.Logger, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	w := &Watcher{
		fs:     fsWatcher,
		root:   root,
		settle: DefaultSettle,
		scan:   scan,
		log:    console.Component(logger, "watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run scans once, then waits for activity until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.runScan(ctx)
	w.log.Info().Msgf("Watching %s. Press Ctrl+C to stop.", w.root)

	timer := time.NewTimer(w.settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if w.handle(event) {
				timer.Reset(w.settle)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.log.Warn().Err(err).Msg("Watcher error")

		case <-timer.C:
			w.runScan(ctx)
		}
	}
}

// handle reports whether event should (re)arm the settle timer.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if hidden(event.Name) {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Warn().Err(err).Msg("Unable to watch new directory")
			}
			// Files copied in along with the directory produce no events of their own.
			return true
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if !media.IsVideo(event.Name) {
		return false
	}
	w.log.Debug().Str("op", event.Op.String()).Msg(event.Name)
	return true
}

func (w *Watcher) runScan(ctx context.Context) {
	moved := w.scan(ctx)
	if w.after != nil && ctx.Err() == nil {
		w.after(ctx, moved)
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.log.Debug().Msgf("Watching: %s", path)
		return nil
	})
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
