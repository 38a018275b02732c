package watch

import (
	"path/filepath"
	"strings"
)

// IgnoreSet decides which paths the watcher skips.
//
// Patterns use filepath.Match syntax and are tried against the path's base
// name and against the full slash-separated path. A trailing "/" restricts a
// pattern to directories.
type IgnoreSet struct {
	patterns     []ignorePattern
	ignoreHidden bool
}

type ignorePattern struct {
	glob    string
	dirOnly bool
}

// NewIgnoreSet builds an IgnoreSet from glob patterns.
func NewIgnoreSet(patterns []string, ignoreHidden bool) *IgnoreSet {
	set := &IgnoreSet{ignoreHidden: ignoreHidden}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		dirOnly := strings.HasSuffix(p, "/")
		set.patterns = append(set.patterns, ignorePattern{
			glob:    strings.TrimSuffix(p, "/"),
			dirOnly: dirOnly,
		})
	}
	return set
}

// Match reports whether a path should be ignored.
func (s *IgnoreSet) Match(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	base := filepath.Base(path)

	if s.ignoreHidden && strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return true
	}

	for _, p := range s.patterns {
		if p.dirOnly && !isDir {
			// A directory pattern still covers files below a matching
			// directory segment.
			if s.underDir(path, p.glob) {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(p.glob, base); ok {
			return true
		}
		if ok, _ := filepath.Match(p.glob, path); ok {
			return true
		}
	}
	return false
}

// underDir reports whether any directory segment of path matches glob.
func (s *IgnoreSet) underDir(path, glob string) bool {
	segments := strings.Split(path, "/")
	for _, seg := range segments[:max(len(segments)-1, 0)] {
		if ok, _ := filepath.Match(glob, seg); ok {
			return true
		}
	}
	return false
}
