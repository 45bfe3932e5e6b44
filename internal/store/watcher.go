package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher emits a notification whenever the entries slot is rewritten by
// another process (a second mofu command, a sync run). It watches the data
// directory rather than the file itself because the store replaces the file
// on every mutation via rename.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan struct{}
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	target  string
}

// NewWatcher creates a watcher for the store's entries slot. Start it with
// Start() before reading Events().
func NewWatcher(s *Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher: fsw,
		events:  make(chan struct{}, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
		target:  s.EntriesPath(),
	}, nil
}

// Start begins watching the store directory for entries-slot rewrites.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if err := w.watcher.Add(filepath.Dir(w.target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.target), err)
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop stops the watcher and blocks until the event loop has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	w.wg.Wait()

	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel signalling entries-slot changes. Closed when
// the watcher is stopped.
func (w *Watcher) Events() <-chan struct{} { return w.events }

// Errors returns the channel of watcher errors. Closed when the watcher is
// stopped.
func (w *Watcher) Errors() <-chan error { return w.errors }

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isEntriesChange(event) {
				continue
			}
			select {
			case w.events <- struct{}{}:
			case <-w.done:
				return
			default:
				// A pending notification already covers this change.
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// isEntriesChange reports whether the event touches the entries slot. The
// atomic rewrite shows up as a create/rename of entries.json, so all write
// shaped ops count.
func (w *Watcher) isEntriesChange(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(w.target) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}
