package cleanup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/classify"
	"github.com/sydlexius/crate/internal/event"
	"github.com/sydlexius/crate/internal/session"
)

// ScanJunk flags artists whose names look like import debris.
func (s *Service) ScanJunk(ctx context.Context) (*Scan[[]classify.Result], error) {
	artists, err := s.catalog.ListArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing artists: %w", err)
	}
	results := s.classifier.Scan(artists)
	if results == nil {
		results = []classify.Result{}
	}
	sess := s.sessions.Create(session.KindJunk, results)
	s.logger.Info("junk scan complete",
		slog.Int("artists", len(artists)),
		slog.Int("flagged", len(results)))
	s.bus.Publish(event.New(event.ScanJunk, "session_id", sess.ID, "flagged", len(results)))
	return newScan(sess, results), nil
}

// DeleteJunk deletes the selected flagged artists and discards the session.
// Every id must have been flagged by the scan.
func (s *Service) DeleteJunk(ctx context.Context, sessionID string, ids []string) (batch.Result, error) {
	if len(ids) == 0 {
		return batch.Result{}, catalog.Configurationf("no artists selected")
	}
	sess, err := s.sessions.Get(sessionID, session.KindJunk)
	if err != nil {
		return batch.Result{}, err
	}
	results, err := session.Payload[[]classify.Result](sess)
	if err != nil {
		return batch.Result{}, err
	}
	selected, err := selectByID(results, ids, func(r classify.Result) string { return r.Artist.ID })
	if err != nil {
		return batch.Result{}, err
	}
	s.sessions.Delete(sess.ID)

	res := batch.Run(ctx, s.opts.Concurrency, selected,
		func(r classify.Result) (string, string) {
			return r.Artist.ID, fmt.Sprintf("delete artist %q", r.Artist.Name)
		},
		func(ctx context.Context, r classify.Result) error {
			return s.catalog.DeleteItem(ctx, r.Artist.ID)
		})
	logResult(s.logger, "junk artists deleted", res)
	s.bus.Publish(event.New(event.ItemsDeleted, "kind", "artist", "deleted", res.Succeeded, "failed", res.Failed()))
	return res, nil
}
