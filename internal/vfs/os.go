package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OS is a VFS backed by the operating system's file system.
type OS struct{}

// NewOS creates an OS-backed VFS.
func NewOS() *OS {
	return &OS{}
}

// ReadFile reads the entire file content.
func (v *OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating it if necessary.
func (v *OS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Stat returns file information.
func (v *OS) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return NewFileInfo(path, info.Size(), info.ModTime(), info.IsDir()), nil
}

// Rename renames (moves) a file.
func (v *OS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Remove removes a file.
func (v *OS) Remove(path string) error {
	return os.Remove(path)
}

// Abs returns the absolute form of a path.
func (v *OS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// Exists returns true if the path exists.
func (v *OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if the path is a directory.
func (v *OS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Walk walks the file tree rooted at root in lexical order.
func (v *OS) Walk(root string, fn WalkFunc) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fn(path, FileInfo{}, err)
		}
		info, ierr := d.Info()
		if ierr != nil {
			return fn(path, FileInfo{}, ierr)
		}
		return fn(path, NewFileInfo(path, info.Size(), info.ModTime(), d.IsDir()), nil)
	})
}

// Ensure OS implements VFS.
var _ VFS = (*OS)(nil)
