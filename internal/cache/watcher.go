package cache

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher keeps a DiskStore's index honest when artifact files are removed
// behind its back (manual cleanup, another process pruning the directory).
// Removed files are dropped from the index so later lookups miss cleanly
// instead of failing on the read.
type Watcher struct {
	store   *DiskStore
	watcher *fsnotify.Watcher
	logger  *log.Logger
	done    chan struct{}
}

// NewWatcher starts watching the store's directory. Close must be called to
// release the watch.
func NewWatcher(store *DiskStore, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create cache watcher: %w", err)
	}

	if err := fw.Add(store.Path()); err != nil {
		fw.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to watch cache directory: %w", err)
	}

	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		store:   store,
		watcher: fw,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, artifactExt) {
				continue
			}
			key := strings.TrimSuffix(name, artifactExt)
			if w.store.Contains(key) {
				w.logger.Debug("cached artifact removed externally", "key", key)
				w.store.Forget(key)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("cache watcher error", "err", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
