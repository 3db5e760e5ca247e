// Package session keeps live registration wizards in memory, keyed by session
// ID, and evicts the ones that sit idle past their TTL.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signup/internal/registration/orchestrator"
	"signup/pkg/platform/sentinel"
)

// Session binds one wizard to its ID.
type Session struct {
	ID        string
	Wizard    *orchestrator.Orchestrator
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is an in-memory session store. Every successful Get slides the
// session's expiry forward by the TTL.
//
// Error contract:
//   - sentinel.ErrNotFound when the ID is unknown
//   - sentinel.ErrExpired when the session outlived its TTL (it is removed)
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

type StoreOption func(*Store)

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore constructs an empty store. A non-positive ttl defaults to 30 minutes.
func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create stores sess, stamping CreatedAt and ExpiresAt.
func (s *Store) Create(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" || sess.Wizard == nil {
		return fmt.Errorf("session id and wizard are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; ok {
		return fmt.Errorf("session %s already exists: %w", sess.ID, sentinel.ErrInvalidState)
	}
	now := s.now()
	sess.CreatedAt = now
	sess.ExpiresAt = now.Add(s.ttl)
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	now := s.now()
	if !now.Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, fmt.Errorf("session expired: %w", sentinel.ErrExpired)
	}
	sess.ExpiresAt = now.Add(s.ttl)
	return sess, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// DeleteExpiredSessions removes every session whose expiry is at or before now.
func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
