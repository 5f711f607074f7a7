package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the config file watcher.
type WatcherConfig struct {
	// Path is the config file to watch.
	Path string

	// DebounceDelay is how long to wait for more changes before reloading.
	DebounceDelay time.Duration

	// Logger for watch events.
	Logger *slog.Logger
}

// Watcher reloads the configuration when the config file changes. Editors
// write files in bursts, so changes are debounced before a reload fires.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   bool

	reloads chan *Config
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = 200 * time.Millisecond
	}

	return &Watcher{
		config:  cfg,
		watcher: fsw,
		logger:  logger,
		reloads: make(chan *Config, 1),
	}, nil
}

// Reloads returns the channel of successfully reloaded configurations.
func (w *Watcher) Reloads() <-chan *Config {
	return w.reloads
}

// Start begins watching the config file. Watching the parent directory
// instead of the file itself survives the rename-and-replace writes most
// editors and config management tools perform.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Config watcher started",
		"path", w.config.Path,
		"debounce", w.config.DebounceDelay)

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	target := filepath.Clean(w.config.Path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.pendingMu.Lock()
			w.pending = true
			w.pendingMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watch error", "error", err)

		case <-ticker.C:
			w.pendingMu.Lock()
			dirty := w.pending
			w.pending = false
			w.pendingMu.Unlock()
			if !dirty {
				continue
			}
			w.reload()
		}
	}
}

// reload parses and validates the changed file. Invalid content keeps the
// running configuration untouched.
func (w *Watcher) reload() {
	cfg, err := LoadFromFile(w.config.Path)
	if err != nil {
		w.logger.Warn("Config reload failed", "path", w.config.Path, "error", err)
		return
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("Reloaded config invalid, keeping current", "error", err)
		return
	}

	select {
	case w.reloads <- cfg:
		w.logger.Info("Config reloaded", "path", w.config.Path)
	default:
		w.logger.Warn("Config reload dropped, previous reload not consumed")
	}
}
