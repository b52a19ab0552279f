// Package cleanup is the application layer over the dedupe, classify, merge
// and playlist packages. Each scan stores its result in a session; each
// action looks the session up again and acts on what the user selected.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/classify"
	"github.com/sydlexius/crate/internal/event"
	"github.com/sydlexius/crate/internal/merge"
	"github.com/sydlexius/crate/internal/playlist"
	"github.com/sydlexius/crate/internal/remote"
	"github.com/sydlexius/crate/internal/session"
)

// Options holds the tunables of a Service.
type Options struct {
	Threshold     int
	PairThreshold int
	// Concurrency bounds per-item catalog mutations. Values below 1 mean 1.
	Concurrency int
}

// Service runs scans and the actions that follow them.
type Service struct {
	catalog    catalog.Service
	sessions   *session.Store
	bus        *event.Bus
	classifier *classify.Engine
	resolver   *merge.Resolver
	opts       Options
	logger     *slog.Logger

	generator *playlist.Generator
	files     remote.FileService
}

// NewService creates a cleanup service. bus may be nil.
func NewService(cat catalog.Service, sessions *session.Store, bus *event.Bus, classifier *classify.Engine, opts Options, logger *slog.Logger) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if classifier == nil {
		classifier = classify.NewEngine()
	}
	logger = logger.With(slog.String("component", "cleanup"))
	return &Service{
		catalog:    cat,
		sessions:   sessions,
		bus:        bus,
		classifier: classifier,
		resolver:   merge.NewResolver(cat, opts.Concurrency, logger),
		opts:       opts,
		logger:     logger,
	}
}

// SetGenerator enables playlist generation.
func (s *Service) SetGenerator(g *playlist.Generator) { s.generator = g }

// SetFileService enables remote playlist-file cleanup.
func (s *Service) SetFileService(f remote.FileService) { s.files = f }

// Options returns the configured tunables.
func (s *Service) Options() Options { return s.opts }

// Scan is the envelope returned by every scan.
type Scan[T any] struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Results   T         `json:"results"`
}

func newScan[T any](sess *session.Session, results T) *Scan[T] {
	return &Scan[T]{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt, Results: results}
}

// Rescan asks the media server to rescan its libraries.
func (s *Service) Rescan(ctx context.Context) error {
	r, ok := s.catalog.(catalog.Rescanner)
	if !ok {
		return catalog.Configurationf("media server does not support rescans")
	}
	if err := r.TriggerLibraryScan(ctx); err != nil {
		return fmt.Errorf("triggering library scan: %w", err)
	}
	s.bus.Publish(event.New(event.LibraryRescan))
	return nil
}

// selectByID returns the items whose id is in ids, in item order. Every id
// must name an item.
func selectByID[T any](items []T, ids []string, id func(T) string) ([]T, error) {
	want := make(map[string]bool, len(ids))
	for _, i := range ids {
		want[i] = true
	}
	var out []T
	for _, it := range items {
		if want[id(it)] {
			out = append(out, it)
			delete(want, id(it))
		}
	}
	for i := range want {
		return nil, catalog.Configurationf("id %q is not part of this scan", i)
	}
	return out, nil
}

func logResult(logger *slog.Logger, msg string, res batch.Result) {
	logger.Info(msg, slog.Int("succeeded", res.Succeeded), slog.Int("failed", res.Failed()))
}
