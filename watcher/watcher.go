// Package watcher turns filesystem activity under the working tree into a
// single edge-triggered reload flag. Only the most recent change matters,
// so every event collapses into one atomic boolean that the frame loop
// reads and clears once per frame.
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Watcher struct {
	fsw     *fsnotify.Watcher
	changed atomic.Bool
	done    chan struct{}
	log     *zap.SugaredLogger
}

// New watches root and every directory below it. fsnotify does not recurse
// on its own, so directories are added one by one and newly created ones
// are picked up from their create events.
func New(root string, log *zap.SugaredLogger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:  fsw,
		done: make(chan struct{}),
		log:  log,
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				// Best effort; the path may already be gone.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(event.Name)
				}
			}
			w.changed.Store(true)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnw("watcher error", "error", err)
		}
	}
}

// Consume reads and clears the change flag. The frame loop is the sole
// caller; repeated triggers between frames coalesce into one true.
func (w *Watcher) Consume() bool {
	return w.changed.Swap(false)
}

// Close stops watching and waits for the event goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
