// Package document manages the set of tracked documents and their live views.
//
// The Store is the host-collaborator surface the classifier runs against: it
// lists tracked documents, reads and writes their content through a VFS, and
// answers which contents are currently displayed for a path. Binary files
// and files over the size limit are refused at tracking time, so everything
// downstream can assume line-oriented text.
package document

import (
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/driftwatch/internal/vfs"
)

// DefaultMaxFileSize is the default tracking size limit.
const DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

// Document is one tracked file.
type Document struct {
	// Path is the absolute path of the file.
	Path string

	// Size is the file size in bytes at tracking time.
	Size int64

	// DiskModTime is the file's modification time when last read.
	DiskModTime time.Time
}

// ViewID identifies an attached live view.
type ViewID = uuid.UUID

// view is one displayed rendition of a document.
type view struct {
	path    string
	content string
}

// Store tracks documents and their live views over a VFS.
// All methods are safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	fs          vfs.VFS
	maxFileSize int64
	docs        map[string]*Document
	views       map[ViewID]*view
}

// Option configures a Store.
type Option func(*Store)

// WithMaxFileSize sets the tracking size limit. Zero means unlimited.
func WithMaxFileSize(size int64) Option {
	return func(s *Store) {
		s.maxFileSize = size
	}
}

// NewStore creates a Store over the given VFS.
func NewStore(fsys vfs.VFS, opts ...Option) *Store {
	s := &Store{
		fs:          fsys,
		maxFileSize: DefaultMaxFileSize,
		docs:        make(map[string]*Document),
		views:       make(map[ViewID]*view),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Track starts tracking a file. Directories, binary files, and files over
// the size limit are refused.
func (s *Store) Track(path string) error {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return &PathError{Op: "track", Path: path, Err: err}
	}

	s.mu.RLock()
	_, exists := s.docs[absPath]
	s.mu.RUnlock()
	if exists {
		return &PathError{Op: "track", Path: path, Err: ErrAlreadyTracked}
	}

	info, err := s.fs.Stat(absPath)
	if err != nil {
		return &PathError{Op: "track", Path: path, Err: err}
	}
	if info.IsDir() {
		return &PathError{Op: "track", Path: path, Err: ErrIsDirectory}
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return &PathError{Op: "track", Path: path, Err: ErrTooLarge}
	}

	content, err := s.fs.ReadFile(absPath)
	if err != nil {
		return &PathError{Op: "track", Path: path, Err: err}
	}
	if vfs.IsBinary(content) {
		return &PathError{Op: "track", Path: path, Err: ErrBinaryFile}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[absPath]; exists {
		return &PathError{Op: "track", Path: path, Err: ErrAlreadyTracked}
	}
	s.docs[absPath] = &Document{
		Path:        absPath,
		Size:        info.Size(),
		DiskModTime: info.ModTime(),
	}
	return nil
}

// Untrack stops tracking a path. Untracking an unknown path is a no-op.
func (s *Store) Untrack(path string) {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, absPath)
	for id, v := range s.views {
		if v.path == absPath {
			delete(s.views, id)
		}
	}
}

// IsTracked reports whether a path is tracked.
func (s *Store) IsTracked(path string) bool {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[absPath]
	return ok
}

// List returns the tracked paths in sorted order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Read returns the current on-disk content of a tracked document and
// refreshes its recorded mod time.
func (s *Store) Read(path string) (string, error) {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return "", &PathError{Op: "read", Path: path, Err: err}
	}

	s.mu.RLock()
	doc, ok := s.docs[absPath]
	s.mu.RUnlock()
	if !ok {
		return "", &PathError{Op: "read", Path: path, Err: ErrNotTracked}
	}

	content, err := s.fs.ReadFile(absPath)
	if err != nil {
		return "", &PathError{Op: "read", Path: path, Err: err}
	}

	if info, err := s.fs.Stat(absPath); err == nil {
		s.mu.Lock()
		doc.Size = info.Size()
		doc.DiskModTime = info.ModTime()
		s.mu.Unlock()
	}
	return string(content), nil
}

// Write writes content to a tracked document. Used by the resolution flow;
// best-effort in the sense that the caller decides what a failure means.
func (s *Store) Write(path, content string) error {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return &PathError{Op: "write", Path: path, Err: err}
	}

	s.mu.RLock()
	doc, ok := s.docs[absPath]
	s.mu.RUnlock()
	if !ok {
		return &PathError{Op: "write", Path: path, Err: ErrNotTracked}
	}

	if err := s.fs.WriteFile(absPath, []byte(content), fs.FileMode(0644)); err != nil {
		return &PathError{Op: "write", Path: path, Err: err}
	}

	if info, err := s.fs.Stat(absPath); err == nil {
		s.mu.Lock()
		doc.Size = info.Size()
		doc.DiskModTime = info.ModTime()
		s.mu.Unlock()
	}
	return nil
}

// Rename moves a tracked document and its views to a new path. Renaming an
// untracked path is a no-op.
func (s *Store) Rename(oldPath, newPath string) {
	oldAbs, err := s.fs.Abs(oldPath)
	if err != nil {
		return
	}
	newAbs, err := s.fs.Abs(newPath)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[oldAbs]
	if !ok {
		return
	}
	delete(s.docs, oldAbs)
	doc.Path = newAbs
	s.docs[newAbs] = doc
	for _, v := range s.views {
		if v.path == oldAbs {
			v.path = newAbs
		}
	}
}

// AttachView registers a displayed rendition of a document and returns its
// view ID.
func (s *Store) AttachView(path, content string) (ViewID, error) {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return uuid.Nil, &PathError{Op: "attach", Path: path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.views[id] = &view{path: absPath, content: content}
	return id, nil
}

// UpdateView replaces the content of an attached view.
func (s *Store) UpdateView(id ViewID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[id]
	if !ok {
		return ErrViewNotFound
	}
	v.content = content
	return nil
}

// DetachView removes an attached view. Detaching an unknown view is a no-op.
func (s *Store) DetachView(id ViewID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, id)
}

// Views returns the contents currently displayed for a path. It satisfies
// the classifier's view query.
func (s *Store) Views(path string) []string {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var contents []string
	for _, v := range s.views {
		if v.path == absPath {
			contents = append(contents, v.content)
		}
	}
	return contents
}
