package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors file system changes through fsnotify.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	config  Config
	ignore  *IgnoreSet
	paths   map[string]bool
	events  chan Event
	errors  chan error
	closed  bool
	closeCh chan struct{}
	done    sync.WaitGroup
}

// New creates a watcher. Callers must drain Events and Errors until Close.
func New(opts ...Option) (*Watcher, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 100
	}
	if config.RenameWindow <= 0 {
		config.RenameWindow = 50 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		config:  config,
		ignore:  NewIgnoreSet(config.IgnorePatterns, config.IgnoreHidden),
		paths:   make(map[string]bool),
		events:  make(chan Event, config.BufferSize),
		errors:  make(chan error, config.BufferSize),
		closeCh: make(chan struct{}),
	}

	w.done.Add(1)
	go w.processLoop()

	return w, nil
}

// Add starts watching a single path.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if w.paths[absPath] {
		return ErrAlreadyWatching
	}
	if err := w.fsw.Add(absPath); err != nil {
		return err
	}
	w.paths[absPath] = true
	return nil
}

// AddRecursive watches a directory and all non-ignored subdirectories.
// fsnotify reports changes to files inside each watched directory, so only
// directories need registering.
func (w *Watcher) AddRecursive(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(absRoot)
	}

	return filepath.WalkDir(absRoot, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if p != absRoot && w.ignore.Match(p, true) {
			return filepath.SkipDir
		}
		if addErr := w.Add(p); addErr != nil && addErr != ErrAlreadyWatching {
			w.sendError(addErr)
		}
		return nil
	})
}

// Unwatch stops watching a path.
func (w *Watcher) Unwatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !w.paths[absPath] {
		return ErrNotWatching
	}
	if err := w.fsw.Remove(absPath); err != nil {
		return err
	}
	delete(w.paths, absPath)
	return nil
}

// Events returns the event channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and closes both channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.done.Wait()
	close(w.events)
	close(w.errors)
	return err
}

// processLoop converts fsnotify events, pairing renames with the create
// that follows them.
func (w *Watcher) processLoop() {
	defer w.done.Done()

	// At most one rename awaits its create at a time; overlapping renames
	// degrade to remove+create, which the classifier handles the same way.
	var pendingOld string
	var pendingTimer *time.Timer
	var pendingC <-chan time.Time

	flushPending := func() {
		if pendingOld == "" {
			return
		}
		w.send(Event{Path: pendingOld, Op: OpRemove, Time: time.Now()})
		pendingOld = ""
		if pendingTimer != nil {
			pendingTimer.Stop()
			pendingTimer = nil
			pendingC = nil
		}
	}

	for {
		select {
		case <-w.closeCh:
			flushPending()
			return

		case <-pendingC:
			w.send(Event{Path: pendingOld, Op: OpRemove, Time: time.Now()})
			pendingOld = ""
			pendingTimer = nil
			pendingC = nil

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				flushPending()
				return
			}

			isDir := false
			if info, err := os.Stat(fsEvent.Name); err == nil {
				isDir = info.IsDir()
			}
			if w.ignore.Match(fsEvent.Name, isDir) {
				continue
			}

			switch {
			case fsEvent.Op.Has(fsnotify.Rename):
				flushPending()
				pendingOld = fsEvent.Name
				pendingTimer = time.NewTimer(w.config.RenameWindow)
				pendingC = pendingTimer.C

			case fsEvent.Op.Has(fsnotify.Create):
				if pendingOld != "" {
					old := pendingOld
					pendingOld = ""
					pendingTimer.Stop()
					pendingTimer = nil
					pendingC = nil
					w.send(Event{Path: fsEvent.Name, OldPath: old, Op: OpRename, Time: time.Now()})
				} else {
					w.send(Event{Path: fsEvent.Name, Op: OpCreate, Time: time.Now()})
				}
				// New directories join the watch so their contents
				// are observed too.
				if isDir {
					if err := w.Add(fsEvent.Name); err != nil && err != ErrAlreadyWatching && err != ErrClosed {
						w.sendError(err)
					}
				}

			case fsEvent.Op.Has(fsnotify.Write):
				w.send(Event{Path: fsEvent.Name, Op: OpWrite, Time: time.Now()})

			case fsEvent.Op.Has(fsnotify.Remove):
				w.send(Event{Path: fsEvent.Name, Op: OpRemove, Time: time.Now()})
			}
			// Chmod-only events carry no content change and are dropped.

		case err, ok := <-w.fsw.Errors:
			if !ok {
				flushPending()
				return
			}
			w.sendError(err)
		}
	}
}

// send delivers an event. A full channel drops the event and surfaces the
// loss on the error channel so a consumer can resynchronize.
func (w *Watcher) send(event Event) {
	select {
	case w.events <- event:
	default:
		w.sendError(fmt.Errorf("%s %s: %w", event.Op, event.Path, ErrEventOverflow))
	}
}

// sendError delivers an error, dropping it if the channel is full.
func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}
