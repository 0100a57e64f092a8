package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/chessclock/internal/logger"
)

// Watcher watches a settings file and reports every valid change.
type Watcher struct {
	// path is the watched settings file.
	path string
	// watcher is the underlying fsnotify watcher.
	watcher *fsnotify.Watcher
	// onChange is called with every newly loaded configuration.
	onChange func(*Config)
	// mu protects last.
	mu sync.Mutex
	// last is the most recently reported configuration.
	last *Config
	// done is closed when the watch loop exits.
	done chan struct{}
}

// NewWatcher starts watching path. initial is the configuration already in
// use; reloads equal to it are not reported. The watch loop stops when ctx
// is cancelled or Close is called.
func NewWatcher(ctx context.Context, path string, initial *Config, onChange func(*Config)) (*Watcher, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory to handle editors that replace the file.
	if err := fsWatcher.Add(filepath.Dir(filepath.Clean(path))); err != nil {
		_ = fsWatcher.Close()

		return nil, fmt.Errorf("watch settings directory: %w", err)
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		watcher:  fsWatcher,
		onChange: onChange,
		last:     initial,
		done:     make(chan struct{}),
	}

	go w.watch(logger.WithName(ctx, "settings-watcher"))

	return w, nil
}

// Close stops watching and releases the underlying watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done

	return err
}

// watch monitors the directory for changes to the settings file.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.done)

	filename := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			// Handle write or create events (editors may create new files).
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			logger.WarnKV(ctx, "Settings watcher error", "error", err)
		}
	}
}

// reload reads the file and reports it when it differs from the last one.
func (w *Watcher) reload(ctx context.Context) {
	cfg, err := Load(w.path)
	if err != nil {
		// A half-written file fails here and is picked up by the next event.
		logger.WarnKV(ctx, "Ignoring settings file", "path", w.path, "error", err)

		return
	}

	w.mu.Lock()
	if w.last != nil && *w.last == *cfg {
		w.mu.Unlock()

		return
	}

	w.last = cfg
	w.mu.Unlock()

	logger.InfoKV(ctx, "Settings reloaded", "path", w.path)

	if w.onChange != nil {
		w.onChange(cfg)
	}
}
