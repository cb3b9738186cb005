// Package watcher reports changes to individual files.
//
// Each watched file's parent directory is registered with fsnotify so
// that editors which save by rename are still seen. Events for other
// files in the directory are dropped. Bursts of events for one file are
// coalesced over a debounce window before handlers run.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned when using a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the event occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// ErrorHandler is called when the underlying watcher reports an error.
type ErrorHandler func(err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
// Zero delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.RWMutex

	fsw      *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]int
	handlers []Handler
	onError  []ErrorHandler
	debounce time.Duration

	pending map[string]Event

	closed bool
	wg     sync.WaitGroup
}

// New creates a watcher. Call Start to begin delivering events.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]Event),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds a file to the watch list. The file need not exist yet, but
// its directory must.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// OnError registers a handler for watcher errors, such as a dropped
// event queue. Without one, errors are discarded.
func (w *Watcher) OnError(handler ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = append(w.onError, handler)
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Start delivers events until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var tick <-chan time.Time
	if w.debounce > 0 {
		ticker := time.NewTicker(w.debounce)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			ev, ok := w.convert(fsEvent)
			if !ok {
				continue
			}
			if w.debounce > 0 {
				w.queueEvent(ev)
			} else {
				w.emitEvent(ev)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.emitError(err)

		case <-tick:
			w.processPendingEvents()
		}
	}
}

// convert maps an fsnotify event on a watched file to an Event.
func (w *Watcher) convert(fsEvent fsnotify.Event) (Event, bool) {
	path, err := filepath.Abs(fsEvent.Name)
	if err != nil {
		return Event{}, false
	}

	w.mu.RLock()
	watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return Event{}, false
	}

	ev := Event{Path: path, Time: time.Now()}
	switch {
	case fsEvent.Has(fsnotify.Remove):
		ev.Op = OpRemove
	case fsEvent.Has(fsnotify.Rename):
		ev.Op = OpRename
	case fsEvent.Has(fsnotify.Create):
		ev.Op = OpCreate
	case fsEvent.Has(fsnotify.Write):
		ev.Op = OpWrite
	default:
		return Event{}, false
	}
	return ev, true
}

// queueEvent queues an event for debounced delivery.
// Coalescing rules:
// - any + remove => remove
// - create + write => create
// - write + write => write (latest time)
func (w *Watcher) queueEvent(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	existing, ok := w.pending[ev.Path]
	if ok && ev.Op == OpWrite && existing.Op != OpWrite {
		ev.Op = existing.Op
	}
	w.pending[ev.Path] = ev
}

// processPendingEvents emits events that have been stable for the
// debounce window.
func (w *Watcher) processPendingEvents() {
	stable := time.Now().Add(-w.debounce)

	w.mu.Lock()
	var toEmit []Event
	for path, ev := range w.pending {
		if ev.Time.Before(stable) {
			toEmit = append(toEmit, ev)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, ev := range toEmit {
		w.emitEvent(ev)
	}
}

// emitEvent calls all handlers with the event.
func (w *Watcher) emitEvent(ev Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		safeCallHandler(handler, ev)
	}
}

// emitError calls all error handlers with err.
func (w *Watcher) emitError(err error) {
	w.mu.RLock()
	handlers := make([]ErrorHandler, len(w.onError))
	copy(handlers, w.onError)
	w.mu.RUnlock()

	for _, handler := range handlers {
		func() {
			defer func() {
				_ = recover()
			}()
			handler(err)
		}()
	}
}

// safeCallHandler calls a handler with panic recovery so a failing
// handler cannot stop the event loop.
func safeCallHandler(handler Handler, ev Event) {
	defer func() {
		_ = recover()
	}()
	handler(ev)
}
