package am

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

// ReloadCallback receives each successfully reloaded configuration.
type ReloadCallback func(*Config) error

// ConfigWatcher reloads the configuration when the file it was read from
// changes. The parent directory is watched so that editors replacing the
// file on save are still seen.
type ConfigWatcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	callbacks []ReloadCallback
}

// NewConfigWatcher watches configPath. Call Start to begin delivering reloads.
func NewConfigWatcher(configPath string) (*ConfigWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	path := filepath.Clean(configPath)
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "failed to watch config file %s", configPath)
	}
	return &ConfigWatcher{
		path:     path,
		fsw:      fsw,
		debounce: 500 * time.Millisecond,
	}, nil
}

// OnReload registers a callback. Callbacks run in registration order; an
// error is logged and does not stop later callbacks.
func (cw *ConfigWatcher) OnReload(callback ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// Start delivers reloads until Stop is called.
func (cw *ConfigWatcher) Start() {
	go cw.loop()
}

func (cw *ConfigWatcher) loop() {
	for {
		select {
		case event, ok := <-cw.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debugw("Config file changed", logger.FieldFile, event.Name, "op", event.Op.String())
			cw.schedule()

		case err, ok := <-cw.fsw.Errors:
			if !ok {
				return
			}
			logger.Warnw("Config watcher error", logger.FieldError, err)
		}
	}
}

// schedule coalesces the events of one save into a single reload.
func (cw *ConfigWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, func() {
		if err := cw.reload(); err != nil {
			logger.Errorw("Config reload failed", logger.FieldFile, cw.path, logger.FieldError, err)
		}
	})
}

func (cw *ConfigWatcher) reload() error {
	Reset()
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "reloaded config is invalid")
	}
	logger.Infow("Config reloaded", logger.FieldFile, cw.path)

	cw.mu.Lock()
	callbacks := append([]ReloadCallback(nil), cw.callbacks...)
	cw.mu.Unlock()

	for _, callback := range callbacks {
		if err := callback(cfg); err != nil {
			logger.Warnw("Config reload callback failed", logger.FieldError, err)
		}
	}
	return nil
}

// Stop ends watching and cancels a pending reload.
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()
	return cw.fsw.Close()
}
