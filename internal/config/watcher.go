package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// ConfigCallback is called with each successfully reloaded configuration.
type ConfigCallback func(*Config)

// ErrorCallback is called when a reload fails.
type ErrorCallback func(error)

// Watcher watches the configuration file and reloads it on change.
// Invalid configurations are reported and never reach the callback.
type Watcher struct {
	path          string
	watcher       *fsnotify.Watcher
	callback      ConfigCallback
	errorCallback ErrorCallback
	logger        observability.Logger
	debounceDelay time.Duration
	lastConfig    *Config
	mu            sync.RWMutex
	stopCh        chan struct{}
	stoppedCh     chan struct{}
	running       bool
}

// WatcherOption is a functional option for configuring the watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the debounce delay for file changes.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDelay = delay
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithErrorCallback sets the error callback for the watcher.
func WithErrorCallback(callback ErrorCallback) WatcherOption {
	return func(w *Watcher) {
		w.errorCallback = callback
	}
}

// NewWatcher creates a new configuration watcher.
func NewWatcher(path string, callback ConfigCallback, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:          absPath,
		watcher:       fsWatcher,
		callback:      callback,
		debounceDelay: 100 * time.Millisecond,
		logger:        observability.NopLogger(),
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start begins watching. The directory is watched rather than the file so
// that editors replacing the file by rename are noticed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		_ = w.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("started watching configuration file",
		observability.String("path", w.path),
	)

	go w.watch(ctx)

	return nil
}

// Stop stops watching the configuration file.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh

	return w.watcher.Close()
}

// LastConfig returns the last successfully reloaded configuration.
func (w *Watcher) LastConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastConfig
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("config file changed",
				observability.String("path", event.Name),
				observability.String("op", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(w.debounceDelay)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			debounceCh = nil
			_ = w.Reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", observability.Error(err))
			w.reportError(err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// Reload loads and validates the file now and invokes the callback on
// success.
func (w *Watcher) Reload() error {
	cfg, err := LoadConfig(w.path)
	if err == nil {
		err = ValidateConfig(cfg)
	}
	if err != nil {
		w.logger.Error("configuration reload failed",
			observability.String("path", w.path),
			observability.Error(err),
		)
		w.reportError(err)
		return err
	}

	w.mu.Lock()
	w.lastConfig = cfg
	w.mu.Unlock()

	w.logger.Info("configuration reloaded", observability.String("path", w.path))

	if w.callback != nil {
		w.callback(cfg)
	}
	return nil
}

func (w *Watcher) reportError(err error) {
	if w.errorCallback != nil {
		w.errorCallback(err)
	}
}
