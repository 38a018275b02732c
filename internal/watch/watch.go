// Package watch turns raw file system notifications into the
// created/modified/deleted/renamed event stream the monitor consumes.
//
// The watcher is backed by fsnotify. Platform watchers report a rename as a
// RENAME on the old path followed by a CREATE on the new one; Watcher pairs
// the two within a short window into a single OpRename event carrying both
// paths, and degrades to a remove when no create follows. Rapid bursts of
// writes can be coalesced with Debounce.
package watch

import (
	"errors"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrClosed          = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrEventOverflow   = errors.New("event buffer full, event dropped")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file or directory was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file was renamed; the event carries both paths.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch {
	case op.Has(OpRename):
		return "RENAME"
	case op.Has(OpRemove):
		return "REMOVE"
	case op.Has(OpCreate):
		return "CREATE"
	case op.Has(OpWrite):
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a file system change event.
type Event struct {
	// Path is the affected path; for renames, the new path.
	Path string

	// OldPath is the prior path for OpRename events, empty otherwise.
	OldPath string

	// Op is the operation that occurred.
	Op Op

	// Time is when the event was observed.
	Time time.Time
}

// Config holds watcher configuration.
type Config struct {
	// BufferSize is the size of the event and error channels.
	// Default: 100.
	BufferSize int

	// RenameWindow is how long a rename waits for its matching create
	// before degrading to a remove. Default: 50ms.
	RenameWindow time.Duration

	// IgnorePatterns are glob patterns for paths to skip.
	IgnorePatterns []string

	// IgnoreHidden skips dotfiles and dot-directories. Default: true.
	IgnoreHidden bool
}

// DefaultConfig returns a Config with the defaults above.
func DefaultConfig() Config {
	return Config{
		BufferSize:   100,
		RenameWindow: 50 * time.Millisecond,
		IgnoreHidden: true,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithRenameWindow sets the rename pairing window.
func WithRenameWindow(d time.Duration) Option {
	return func(c *Config) {
		c.RenameWindow = d
	}
}

// WithIgnorePatterns sets the ignore patterns.
func WithIgnorePatterns(patterns []string) Option {
	return func(c *Config) {
		c.IgnorePatterns = patterns
	}
}

// WithIgnoreHidden controls whether dotfiles are skipped.
func WithIgnoreHidden(ignore bool) Option {
	return func(c *Config) {
		c.IgnoreHidden = ignore
	}
}
