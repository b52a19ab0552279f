// Package session holds scan results between a scan and the action taken on
// them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sydlexius/crate/internal/catalog"
)

// Kind identifies what a session's payload holds.
type Kind string

// Session kinds.
const (
	KindDuplicates Kind = "duplicates"
	KindPairs      Kind = "pairs"
	KindJunk       Kind = "junk"
	KindPlaylists  Kind = "playlists"
	KindGenerated  Kind = "generated"
)

// DefaultTTL is used when a Store is created with a non-positive TTL.
const DefaultTTL = 30 * time.Minute

// Session is one scan result. The catalog may change after the scan, so
// acting on a session can fail per item.
type Session struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Payload   any       `json:"payload"`
}

// Store keeps sessions in memory until they are consumed or expire.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewStore creates a Store.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "session")),
	}
}

// Create stores payload under a new session id.
func (s *Store) Create(kind Kind, payload any) *Session {
	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.New().String(),
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Payload:   payload,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session with the given id and kind. Missing, expired and
// mismatched sessions all report ErrNotFound. An empty kind matches any.
func (s *Store) Get(id string, kind Kind) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id, kind)
}

// Consume returns the session and removes it from the store.
func (s *Store) Consume(id string, kind Kind) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id, kind)
	if err != nil {
		return nil, err
	}
	delete(s.sessions, id)
	return sess, nil
}

// Delete discards a session. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) lookup(id string, kind Kind) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, catalog.ErrNotFound)
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, fmt.Errorf("session %s expired: %w", id, catalog.ErrNotFound)
	}
	if kind != "" && sess.Kind != kind {
		return nil, fmt.Errorf("session %s is a %s session, not %s: %w", id, sess.Kind, kind, catalog.ErrNotFound)
	}
	return sess, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}

// Payload returns the session payload as T.
func Payload[T any](sess *Session) (T, error) {
	v, ok := sess.Payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("session %s payload is %T: %w", sess.ID, sess.Payload, catalog.ErrNotFound)
	}
	return v, nil
}
