package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory VFS for tests. Paths are normalized with path.Clean
// and treated as rooted at "/"; directories exist implicitly as prefixes of
// stored files.
type Memory struct {
	mu    sync.RWMutex
	files map[string]*memFile
	now   func() time.Time
}

type memFile struct {
	data    []byte
	modTime time.Time
}

// NewMemory creates an empty in-memory VFS.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string]*memFile),
		now:   time.Now,
	}
}

// normalize cleans a path and roots it at "/".
func normalize(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// ReadFile reads the entire file content.
func (v *Memory) ReadFile(p string) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	f, ok := v.files[normalize(p)]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

// WriteFile writes data to a file, creating it if necessary.
func (v *Memory) WriteFile(p string, data []byte, _ fs.FileMode) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	v.files[normalize(p)] = &memFile{data: stored, modTime: v.now()}
	return nil
}

// Stat returns file information.
func (v *Memory) Stat(p string) (FileInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	np := normalize(p)
	if f, ok := v.files[np]; ok {
		return NewFileInfo(np, int64(len(f.data)), f.modTime, false), nil
	}
	if v.isDirLocked(np) {
		return NewFileInfo(np, 0, time.Time{}, true), nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

// Rename renames (moves) a file.
func (v *Memory) Rename(oldPath, newPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	op, np := normalize(oldPath), normalize(newPath)
	f, ok := v.files[op]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	delete(v.files, op)
	v.files[np] = f
	return nil
}

// Remove removes a file.
func (v *Memory) Remove(p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	np := normalize(p)
	if _, ok := v.files[np]; !ok {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	delete(v.files, np)
	return nil
}

// Abs returns the normalized rooted path.
func (v *Memory) Abs(p string) (string, error) {
	return normalize(p), nil
}

// Exists returns true if the path exists.
func (v *Memory) Exists(p string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	np := normalize(p)
	if _, ok := v.files[np]; ok {
		return true
	}
	return v.isDirLocked(np)
}

// IsDir returns true if the path is a directory.
func (v *Memory) IsDir(p string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.isDirLocked(normalize(p))
}

// isDirLocked reports whether any stored file lives under p (must hold lock).
func (v *Memory) isDirLocked(p string) bool {
	if p == "/" {
		return true
	}
	prefix := p + "/"
	for fp := range v.files {
		if strings.HasPrefix(fp, prefix) {
			return true
		}
	}
	return false
}

// Walk walks the stored files under root in lexical order. Implicit
// directories are visited before their contents.
func (v *Memory) Walk(root string, fn WalkFunc) error {
	v.mu.RLock()
	nr := normalize(root)

	var paths []string
	prefix := nr + "/"
	if nr == "/" {
		prefix = "/"
	}
	dirs := map[string]bool{nr: true}
	for fp := range v.files {
		if fp != nr && !strings.HasPrefix(fp, prefix) {
			continue
		}
		paths = append(paths, fp)
		for d := path.Dir(fp); len(d) > len(nr); d = path.Dir(d) {
			dirs[d] = true
		}
	}
	for d := range dirs {
		paths = append(paths, d)
	}
	sort.Strings(paths)

	// Snapshot infos so fn runs without the lock.
	infos := make([]FileInfo, len(paths))
	for i, p := range paths {
		if dirs[p] {
			infos[i] = NewFileInfo(p, 0, time.Time{}, true)
		} else {
			f := v.files[p]
			infos[i] = NewFileInfo(p, int64(len(f.data)), f.modTime, false)
		}
	}
	v.mu.RUnlock()

	var skip string
	for i, p := range paths {
		if skip != "" && strings.HasPrefix(p, skip) {
			continue
		}
		err := fn(p, infos[i], nil)
		if err == SkipDir && infos[i].IsDir() {
			skip = p + "/"
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Ensure Memory implements VFS.
var _ VFS = (*Memory)(nil)
