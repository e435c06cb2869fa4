package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrUnreadable reports that the scan root does not exist or is not a
// directory. It aborts the scan before any analyzer runs.
var ErrUnreadable = errors.New("not a readable directory")

// Directories that are indexed as present but never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"__pycache__":  true,
	".tox":         true,
	".dart_tool":   true,
	".idea":        true,
	".next":        true,
}

// FileMeta is the lightweight per-file record kept in the snapshot.
type FileMeta struct {
	Size int64
	Mode fs.FileMode
}

// Snapshot is an immutable index of the scanned tree, built once per
// invocation and shared read-only by all analyzers.
type Snapshot struct {
	Root      string
	Files     []string // sorted relative paths
	Dirs      []string // sorted relative paths
	Meta      map[string]FileMeta
	Manifests map[string]*Manifest
	Warnings  []string
	MaxDepth  int

	fileSet map[string]bool
	dirSet  map[string]bool
}

// Build walks root once and indexes every regular file and directory,
// excluding the ignore globs and well-known dependency directories
// (those are recorded as present but not descended into). Individual
// unreadable entries become warnings; a partial snapshot is valid.
func Build(root string, ignoreGlobs []string) (*Snapshot, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("snapshot root %s: %w", root, ErrUnreadable)
	}

	snap := &Snapshot{
		Root:      abs,
		Meta:      make(map[string]FileMeta),
		Manifests: make(map[string]*Manifest),
		fileSet:   make(map[string]bool),
		dirSet:    make(map[string]bool),
	}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if path == abs {
			if walkErr != nil {
				return walkErr
			}
			return nil
		}
		rel, relErr := filepath.Rel(abs, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("unreadable: %s: %v", rel, walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if matchesAny(ignoreGlobs, rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			snap.addDir(rel)
			if skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, statErr := d.Info()
		if statErr != nil {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("unreadable: %s: %v", rel, statErr))
			return nil
		}
		snap.addFile(rel, FileMeta{Size: fi.Size(), Mode: fi.Mode()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(snap.Files)
	sort.Strings(snap.Dirs)
	snap.parseManifests()
	return snap, nil
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *Snapshot) addDir(rel string) {
	s.Dirs = append(s.Dirs, rel)
	s.dirSet[rel] = true
	if depth := strings.Count(rel, "/") + 1; depth > s.MaxDepth && !hiddenOrSkipped(rel) {
		s.MaxDepth = depth
	}
}

func (s *Snapshot) addFile(rel string, meta FileMeta) {
	s.Files = append(s.Files, rel)
	s.fileSet[rel] = true
	s.Meta[rel] = meta
}

// Depth counting ignores hidden trees so .github/workflows and the like
// do not trip the nesting check.
func hiddenOrSkipped(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") || skipDirs[part] {
			return true
		}
	}
	return false
}

// Exists reports whether rel is an indexed file or directory.
func (s *Snapshot) Exists(rel string) bool {
	return s.fileSet[rel] || s.dirSet[rel]
}

// HasFile reports whether rel is an indexed regular file.
func (s *Snapshot) HasFile(rel string) bool { return s.fileSet[rel] }

// IsDir reports whether rel is an indexed directory.
func (s *Snapshot) IsDir(rel string) bool { return s.dirSet[rel] }

// FileCount returns the number of indexed files.
func (s *Snapshot) FileCount() int { return len(s.Files) }

// ReadFile returns the content of an indexed file. Paths outside the
// index are treated as absent so analyzers cannot reach past the
// snapshot taken at scan start.
func (s *Snapshot) ReadFile(rel string) ([]byte, error) {
	if !s.fileSet[rel] {
		return nil, fmt.Errorf("%s: %w", rel, fs.ErrNotExist)
	}
	return os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(rel)))
}

// FilesWithSuffix returns indexed files whose path ends in suffix,
// in sorted order.
func (s *Snapshot) FilesWithSuffix(suffix string) []string {
	var out []string
	for _, f := range s.Files {
		if strings.HasSuffix(f, suffix) {
			out = append(out, f)
		}
	}
	return out
}

// FilesUnder returns indexed files below the given directory, in
// sorted order.
func (s *Snapshot) FilesUnder(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var out []string
	for _, f := range s.Files {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out
}

// Manifest returns the parsed document for a known manifest file, or
// nil if absent or unparsable.
func (s *Snapshot) Manifest(name string) *Manifest {
	return s.Manifests[name]
}
