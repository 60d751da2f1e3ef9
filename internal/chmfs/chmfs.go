// Package chmfs walks an extracted CHM tree, skipping the container's
// reserved artifacts.
package chmfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDocumentPatterns select the HTML-like documents searched by default.
var DefaultDocumentPatterns = []string{"*.htm", "*.html"}

// TOCPattern matches the compiler-generated table of contents.
const TOCPattern = "*.hhc"

// HomePageCandidates are tried in order when a source is opened.
var HomePageCandidates = []string{"index.html", "index.htm", "default.html", "default.htm"}

// IsReserved reports whether a name is a CHM system artifact (#SYSTEM,
// $FIftiMain, ...).
func IsReserved(name string) bool {
	return strings.HasPrefix(name, "#") || strings.HasPrefix(name, "$")
}

// Matcher matches file names against glob patterns, ignoring case.
type Matcher struct {
	patterns []string
}

// NewMatcher lowercases the patterns; an empty list means the defaults.
func NewMatcher(patterns []string) *Matcher {
	if len(patterns) == 0 {
		patterns = DefaultDocumentPatterns
	}
	m := &Matcher{patterns: make([]string, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

// Match checks the base name of path.
func (m *Matcher) Match(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, p := range m.patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Walk visits every non-reserved entry under root in lexical order. A
// reserved directory is skipped with its whole subtree. Entries that cannot
// be read are skipped without aborting the walk.
func Walk(root string, fn func(path string, d fs.DirEntry) error) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if path == root {
			return nil
		}
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if IsReserved(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(path, d)
	})
}

// Files returns the regular files under root whose names match m, in
// discovery order.
func Files(root string, m *Matcher) ([]string, error) {
	var files []string
	err := Walk(root, func(path string, d fs.DirEntry) error {
		if d.Type().IsRegular() && m.Match(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// FindTOC returns the first table-of-contents file under root.
func FindTOC(root string) (string, bool) {
	return findFirst(root, NewMatcher([]string{TOCPattern}))
}

// FirstDocument returns the first document under root matched by m.
func FirstDocument(root string, m *Matcher) (string, bool) {
	return findFirst(root, m)
}

// HomePage returns the first existing home page candidate directly under root.
func HomePage(root string) (string, bool) {
	for _, name := range HomePageCandidates {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, true
			}
			return abs, true
		}
	}
	return "", false
}

// Contains reports whether path lies inside root once both are cleaned.
func Contains(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// ContainsResolved is Contains with symlinks in both paths followed, so a
// link inside root pointing elsewhere is outside. A path that does not exist
// yet is judged lexically.
func ContainsResolved(root, path string) bool {
	root, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	if path, err = filepath.Abs(path); err != nil {
		return false
	}
	if !Contains(root, path) {
		return false
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return false
	}
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return errors.Is(err, fs.ErrNotExist)
	}
	return Contains(realRoot, realPath)
}

func findFirst(root string, m *Matcher) (string, bool) {
	var found string
	_ = Walk(root, func(path string, d fs.DirEntry) error {
		if d.Type().IsRegular() && m.Match(path) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found, found != ""
}
