package stubgen

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

// ReportCallback receives the outcome of each regeneration.
type ReportCallback func(*Report, error)

// Watcher regenerates a project whenever one of its source files changes.
type Watcher struct {
	project        *Project
	watcher        *fsnotify.Watcher
	onReport       ReportCallback
	debouncePeriod time.Duration

	mu            sync.Mutex
	debounceTimer *time.Timer
	// running serialises generation runs.
	running sync.Mutex
}

// NewWatcher watches every directory below the project's source root.
func NewWatcher(p *Project, onReport ReportCallback) (*Watcher, error) {
	p.defaults()
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		project:        p,
		watcher:        fw,
		onReport:       onReport,
		debouncePeriod: 500 * time.Millisecond,
	}
	if err := w.addTree(p.SourceDir); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if rel, err := filepath.Rel(w.project.SourceDir, path); err == nil && rel != "." && w.project.excluded(rel) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}

// Run blocks until ctx is done, regenerating after each burst of changes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.project.Log.Warnw("Cannot watch new directory", logger.FieldFile, event.Name, logger.FieldError, err)
					}
					continue
				}
			}
			if !relevant(event.Name) {
				continue
			}
			w.project.Log.Debugw("Source change detected",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.schedule(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.project.Log.Warnw("Source watcher error", logger.FieldError, err)
		}
	}
}

// schedule debounces rapid changes into one regeneration.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		w.running.Lock()
		defer w.running.Unlock()
		if ctx.Err() != nil {
			return
		}
		report, err := w.project.Generate(ctx)
		if w.onReport != nil {
			w.onReport(report, err)
		}
	})
}

// stopTimer cancels a pending run and waits for one in progress.
func (w *Watcher) stopTimer() {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()

	w.running.Lock()
	w.running.Unlock()
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// relevant reports whether a change to path can alter the generated stubs.
func relevant(path string) bool {
	switch filepath.Ext(path) {
	case ".xml", ".cpp", ".h":
		return true
	}
	return false
}

// Watch generates once and then regenerates on every source change until ctx
// is done. Each outcome, the first included, is passed to onReport.
func (p *Project) Watch(ctx context.Context, onReport ReportCallback) error {
	w, err := NewWatcher(p, onReport)
	if err != nil {
		return err
	}
	defer w.Close()

	report, err := p.Generate(ctx)
	if onReport != nil {
		onReport(report, err)
	}
	return w.Run(ctx)
}
