package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher hot-reloads the configuration file and notifies subscribers, so a
// rotated API token reaches the transport without restarting the client.
type Watcher struct {
	mu        sync.RWMutex
	current   Config
	callbacks []func(Config)

	logger  *zap.Logger
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewWatcher starts watching the directory of the config file the given
// configuration was loaded from. A configuration without a file layer gets a
// watcher that never fires, which keeps call sites uniform.
func NewWatcher(initial Config, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		current: initial,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	if initial.path == "" {
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory, not the file: editors and secret managers replace
	// files by rename, which drops a watch on the file itself.
	if err := fsw.Add(filepath.Dir(initial.path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	w.watcher = fsw
	go w.loop(initial.path)

	logger.Info("config hot reload enabled", zap.String("path", initial.path))
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnReload registers a callback invoked with each successfully reloaded
// configuration.
func (w *Watcher) OnReload(fn func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Close stops the watcher. Safe to call on a watcher without a file layer.
func (w *Watcher) Close() error {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) loop(path string) {
	// Debounce: editors fire several events per save.
	var pending <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			w.reload(path)
		}
	}
}

func (w *Watcher) reload(path string) {
	cfg, err := Load(path)
	if err != nil {
		// Keep serving the last good configuration.
		w.logger.Error("config reload failed, keeping previous", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := make([]func(Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("config reloaded", zap.String("path", path))
	for _, fn := range callbacks {
		fn(cfg)
	}
}
