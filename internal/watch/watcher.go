// Package watch reruns a build whenever its input file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 200 * time.Millisecond

// BuildFunc rebuilds the watched input.
type BuildFunc func(ctx context.Context) error

type Options struct {
	// Debounce is the quiet period after the last change before a rebuild.
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher watches the directory of one input file, since editors often
// replace a file instead of writing it in place, and reacts only to events
// for that file.
type Watcher struct {
	path     string
	build    BuildFunc
	debounce time.Duration
	log      *zap.Logger
	fsw      *fsnotify.Watcher
}

// New starts watching path. Changes are observed from the moment New
// returns; Run must be called to act on them and to release the watcher.
func New(path string, build BuildFunc, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		path:     abs,
		build:    build,
		debounce: opts.Debounce,
		log:      opts.Logger,
		fsw:      fsw,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	return w, nil
}

// Run handles events until ctx is cancelled. Rebuilds run one at a time on
// the calling goroutine; a failed rebuild is logged and watching goes on.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.log.Info("watching", zap.String("path", w.path))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change detected", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := w.build(ctx); err != nil {
				w.log.Error("rebuild failed", zap.Error(err))
			} else {
				w.log.Info("rebuilt", zap.String("path", w.path))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
