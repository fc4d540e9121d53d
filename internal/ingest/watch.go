package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the source file when it changes on disk. It watches the
// containing directory so editors that replace the file (write to temp,
// rename over) are still observed.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	lastMod time.Time
}

func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &Watcher{path: abs, watcher: watcher}, nil
}

// Run blocks until ctx is cancelled or the watcher fails, invoking handler
// with the file path on each new modification.
func (w *Watcher) Run(ctx context.Context, handler func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			w.mu.Lock()
			if info.ModTime().After(w.lastMod) {
				w.lastMod = info.ModTime()
				handler(w.path)
			}
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
