package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ErrLimit is returned by Create when the store is full.
var ErrLimit = errors.New("session limit reached")

// Store is a thread-safe in-memory session registry with TTL eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	max      int
	ttl      time.Duration
	opts     Options
	log      *slog.Logger
}

// NewStore creates a registry. max <= 0 means unlimited; ttl <= 0 disables
// eviction.
func NewStore(max int, ttl time.Duration, opts Options) *Store {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{
		sessions: make(map[string]*Session),
		max:      max,
		ttl:      ttl,
		opts:     opts,
		log:      log,
	}
}

// Create loads root into a new session and registers it.
func (s *Store) Create(ctx context.Context, root string) (*Session, error) {
	if s.full() {
		return nil, fmt.Errorf("create session (%d open): %w", s.max, ErrLimit)
	}
	sess := New(s.opts)
	if err := sess.Load(ctx, root); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, fmt.Errorf("create session (%d open): %w", s.max, ErrLimit)
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns a session by ID.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// List returns summaries ordered by creation time.
func (s *Store) List() []Summary {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.Unlock()

	out := make([]Summary, 0, len(all))
	for _, sess := range all {
		out = append(out, sess.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle longer than the TTL and returns how many
// were removed.
func (s *Store) Cleanup() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed()) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("expired sessions removed", "count", removed)
	}
	return removed
}

// Run evicts expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

func (s *Store) full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max > 0 && len(s.sessions) >= s.max
}
