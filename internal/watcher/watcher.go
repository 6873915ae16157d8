// Package watcher reports debounced changes to the glboard config file so the
// running board can re-apply UI and theme settings.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/pubsub"
)

// WatcherEvent is published once per debounced burst of file changes.
type WatcherEvent struct {
	Path string
}

// Watcher monitors a single file through its parent directory. Editors
// that save via rename-over still produce an event.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	broker    *pubsub.Broker[WatcherEvent]
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Path        string
	DebounceDur time.Duration
}

// DefaultConfig watches path with a 300ms debounce.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a watcher. Call Start to begin receiving events.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watcher: path is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		abs = cfg.Path
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      abs,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBrokerWithBuffer[WatcherEvent](1),
		done:      make(chan struct{}),
	}, nil
}

// Broker exposes the change stream. Subscribe before calling Start to avoid
// missing the first event.
func (w *Watcher) Broker() *pubsub.Broker[WatcherEvent] {
	return w.broker
}

// Start begins watching the file's directory.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Info(log.CatWatcher, "watching config", "path", w.path)

	go w.loop()
	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	w.broker.Close()
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			if pending {
				pending = false
				log.Debug(log.CatWatcher, "config changed", "path", w.path)
				w.broker.Publish(pubsub.ChangedEvent, WatcherEvent{Path: w.path})
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err, "path", w.path)

		case <-w.done:
			timer.Stop()
			return
		}
	}
}

// isRelevantEvent reports whether event touches the watched file.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Base(event.Name) == filepath.Base(w.path)
}
