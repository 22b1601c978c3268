package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/saihaj/DOGE-AI-sub000/internal/logging"
)

// Watcher reloads the config file on change and pushes the new Config to a
// callback. Used so a legislative session rollover (active_congress edit)
// takes effect without restarting the process.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
}

// NewWatcher creates a watcher for the given config path.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: w, path: path}, nil
}

// Watch monitors the config file until ctx is cancelled; onChange receives
// each successfully reloaded Config. Parse failures keep the previous config
// and are logged, not fatal.
func (w *Watcher) Watch(ctx context.Context, onChange func(*Config)) error {
	// Watch the directory, not the file: editors replace files on save,
	// which drops a file-level watch.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(w.path)
				if err != nil {
					logging.Get(logging.CategoryBoot).Warn("config reload failed: %v", err)
					continue
				}
				if err := cfg.Validate(); err != nil {
					logging.Get(logging.CategoryBoot).Warn("config reload rejected: %v", err)
					continue
				}
				logging.Boot("config reloaded: active_congress=%s", cfg.Resolution.ActiveCongress)
				onChange(cfg)
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
