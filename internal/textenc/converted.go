package textenc

import (
	"path/filepath"
	"sync"
)

// ConvertedSet tracks files already rewritten to UTF-8. Lookups, rewrites and
// inserts share one lock, so a path is converted at most once even when
// callers race.
type ConvertedSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func NewConvertedSet() *ConvertedSet {
	return &ConvertedSet{paths: make(map[string]struct{})}
}

// Contains reports whether path has been converted.
func (s *ConvertedSet) Contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.paths[normalizePath(path)]
	return ok
}

// Convert runs fix for path unless it already ran successfully. It reports
// whether fix was invoked. A failed fix leaves the path unrecorded.
func (s *ConvertedSet) Convert(path string, fix func() error) (bool, error) {
	key := normalizePath(path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[key]; ok {
		return false, nil
	}
	if err := fix(); err != nil {
		return true, err
	}
	s.paths[key] = struct{}{}
	return true, nil
}

// Reset forgets every recorded path.
func (s *ConvertedSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = make(map[string]struct{})
}

// Len returns the number of converted paths.
func (s *ConvertedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
