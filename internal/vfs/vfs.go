// Package vfs provides the file system abstraction driftwatch reads and
// writes documents through.
//
// Two implementations are provided: [OS] for the real file system and
// [Memory] for tests. The interface is deliberately small; it carries only
// the operations the document store and resolution flow need.
package vfs

import (
	"io/fs"
	"time"
)

// VFS is a virtual file system.
type VFS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// Rename renames (moves) a file.
	Rename(oldPath, newPath string) error

	// Remove removes a file.
	Remove(path string) error

	// Abs returns the absolute form of a path.
	Abs(path string) (string, error)

	// Exists returns true if the path exists.
	Exists(path string) bool

	// IsDir returns true if the path is a directory.
	IsDir(path string) bool

	// Walk walks the file tree rooted at root in lexical order.
	Walk(root string, fn WalkFunc) error
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	size    int64
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(path string, size int64, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{path: path, size: size, modTime: modTime, isDir: isDir}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }

// WalkFunc is called by Walk for every file and directory.
// Returning [SkipDir] from a directory skips its contents.
type WalkFunc func(path string, info FileInfo, err error) error

// SkipDir can be returned from a WalkFunc to skip a directory's contents.
var SkipDir = fs.SkipDir
