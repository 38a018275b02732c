// Package monitor bridges file system events into document tracking and
// change classification. It is the single consumer of the watch event stream:
// one goroutine applies events in arrival order, which gives the classifier
// the per-path ordering it requires.
package monitor

import (
	"context"
	"errors"

	"github.com/dshills/driftwatch/internal/document"
	"github.com/dshills/driftwatch/internal/watch"
)

// DocumentStore is the slice of the document store the monitor drives.
type DocumentStore interface {
	Track(path string) error
	Untrack(path string)
	IsTracked(path string) bool
	Read(path string) (string, error)
	Rename(oldPath, newPath string)
}

// Classifier receives lifecycle and content notifications for tracked
// documents.
type Classifier interface {
	OnCreate(path, content string)
	OnModify(path, content string)
	OnDelete(path string)
	OnRename(oldPath, newPath string)
}

// ErrorFunc receives per-event failures. Failures never stop the loop.
type ErrorFunc func(path string, err error)

// Monitor applies watch events to a store and classifier.
type Monitor struct {
	store   DocumentStore
	cls     Classifier
	onError ErrorFunc
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithErrorFunc sets the handler for per-event failures.
func WithErrorFunc(f ErrorFunc) Option {
	return func(m *Monitor) {
		m.onError = f
	}
}

// New creates a Monitor.
func New(store DocumentStore, cls Classifier, opts ...Option) *Monitor {
	m := &Monitor{store: store, cls: cls}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run consumes events until the channel closes or the context is cancelled.
// It is intended to run on its own goroutine.
func (m *Monitor) Run(ctx context.Context, events <-chan watch.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Handle(ev)
		}
	}
}

// Handle applies a single event.
func (m *Monitor) Handle(ev watch.Event) {
	switch {
	case ev.Op.Has(watch.OpRename):
		m.handleRename(ev)
	case ev.Op.Has(watch.OpCreate):
		m.handleCreate(ev.Path)
	case ev.Op.Has(watch.OpWrite):
		m.handleWrite(ev.Path)
	case ev.Op.Has(watch.OpRemove):
		m.handleRemove(ev.Path)
	}
}

func (m *Monitor) handleCreate(path string) {
	if m.store.IsTracked(path) {
		// Recreate at a known path; treat it as a modification so a
		// pending diff keeps accumulating against its baseline.
		m.handleWrite(path)
		return
	}

	if err := m.store.Track(path); err != nil {
		// Directories, binaries, and oversized files are expected to be
		// refused and are skipped silently.
		if isRefusal(err) {
			return
		}
		m.fail(path, err)
		return
	}

	content, err := m.store.Read(path)
	if err != nil {
		m.fail(path, err)
		return
	}
	m.cls.OnCreate(path, content)
}

func (m *Monitor) handleWrite(path string) {
	if !m.store.IsTracked(path) {
		return
	}
	content, err := m.store.Read(path)
	if err != nil {
		m.fail(path, err)
		return
	}
	m.cls.OnModify(path, content)
}

func (m *Monitor) handleRemove(path string) {
	if !m.store.IsTracked(path) {
		return
	}
	m.store.Untrack(path)
	m.cls.OnDelete(path)
}

func (m *Monitor) handleRename(ev watch.Event) {
	if ev.OldPath == "" || !m.store.IsTracked(ev.OldPath) {
		// Rename of an untracked file is just the appearance of a new one.
		m.handleCreate(ev.Path)
		return
	}
	m.store.Rename(ev.OldPath, ev.Path)
	m.cls.OnRename(ev.OldPath, ev.Path)
}

func (m *Monitor) fail(path string, err error) {
	if m.onError != nil {
		m.onError(path, err)
	}
}

// isRefusal reports whether a tracking error is one of the expected
// refusals rather than a real failure.
func isRefusal(err error) bool {
	return errors.Is(err, document.ErrIsDirectory) ||
		errors.Is(err, document.ErrBinaryFile) ||
		errors.Is(err, document.ErrTooLarge) ||
		errors.Is(err, document.ErrAlreadyTracked)
}
