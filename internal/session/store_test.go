package session

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sydlexius/crate/internal/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCreateGetConsume(t *testing.T) {
	s := NewStore(time.Minute, testLogger())
	sess := s.Create(KindJunk, []string{"a"})

	got, err := s.Get(sess.ID, KindJunk)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("Get returned %s", got.ID)
	}

	if _, err := s.Consume(sess.ID, KindJunk); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if _, err := s.Get(sess.ID, KindJunk); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Get after Consume: err = %v, want ErrNotFound", err)
	}
}

func TestGet_WrongKind(t *testing.T) {
	s := NewStore(time.Minute, testLogger())
	sess := s.Create(KindDuplicates, nil)
	if _, err := s.Get(sess.ID, KindPlaylists); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(sess.ID, KindDuplicates); err != nil {
		t.Errorf("wrong-kind lookup removed the session: %v", err)
	}
	if got, err := s.Get(sess.ID, ""); err != nil || got.Kind != KindDuplicates {
		t.Errorf("any-kind lookup = %v, %v", got, err)
	}
}

func TestExpiry(t *testing.T) {
	s := NewStore(time.Minute, testLogger())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	a := s.Create(KindJunk, nil)
	now = now.Add(30 * time.Second)
	b := s.Create(KindJunk, nil)
	now = now.Add(45 * time.Second)

	if _, err := s.Get(a.ID, KindJunk); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expired session: err = %v", err)
	}
	if _, err := s.Get(b.ID, KindJunk); err != nil {
		t.Errorf("live session: %v", err)
	}

	now = now.Add(time.Hour)
	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after sweep", s.Len())
	}
}

func TestPayload(t *testing.T) {
	s := NewStore(0, testLogger())
	sess := s.Create(KindJunk, []string{"x"})

	v, err := Payload[[]string](sess)
	if err != nil || len(v) != 1 {
		t.Errorf("Payload = %v, %v", v, err)
	}
	if _, err := Payload[int](sess); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("wrong type: err = %v", err)
	}
}
