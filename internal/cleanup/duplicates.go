package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/dedupe"
	"github.com/sydlexius/crate/internal/event"
	"github.com/sydlexius/crate/internal/merge"
	"github.com/sydlexius/crate/internal/session"
)

// DuplicateGroup is a dedupe.Group with its position in the scan.
type DuplicateGroup struct {
	Index int `json:"index"`
	dedupe.Group
}

// MergeResult reports a group merge. The catalog only reflects the result
// after a library rescan.
type MergeResult struct {
	Winner        catalog.Artist `json:"winner"`
	Reports       []merge.Report `json:"reports"`
	RescanAdvised bool           `json:"rescan_advised"`
}

// Failed returns the number of recorded errors across all reports.
func (r MergeResult) Failed() int {
	n := 0
	for _, rep := range r.Reports {
		n += len(rep.Errors)
	}
	return n
}

// ScanDuplicates groups the catalog's artists. A zero threshold uses the
// configured one.
func (s *Service) ScanDuplicates(ctx context.Context, threshold int) (*Scan[[]DuplicateGroup], error) {
	if threshold == 0 {
		threshold = s.opts.Threshold
	}
	artists, err := s.catalog.ListArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing artists: %w", err)
	}
	groups, err := dedupe.FindDuplicates(artists, threshold)
	if err != nil {
		return nil, err
	}

	out := make([]DuplicateGroup, len(groups))
	for i, g := range groups {
		out[i] = DuplicateGroup{Index: i, Group: g}
	}

	sess := s.sessions.Create(session.KindDuplicates, out)
	s.logger.Info("duplicate scan complete",
		slog.Int("artists", len(artists)),
		slog.Int("groups", len(out)),
		slog.Int("threshold", threshold),
		slog.String("session_id", sess.ID))
	s.bus.Publish(event.New(event.ScanDuplicates, "session_id", sess.ID, "groups", len(out)))
	return newScan(sess, out), nil
}

func (s *Service) duplicateGroup(sessionID string, index int) (DuplicateGroup, error) {
	sess, err := s.sessions.Get(sessionID, session.KindDuplicates)
	if err != nil {
		return DuplicateGroup{}, err
	}
	groups, err := session.Payload[[]DuplicateGroup](sess)
	if err != nil {
		return DuplicateGroup{}, err
	}
	if index < 0 || index >= len(groups) {
		return DuplicateGroup{}, fmt.Errorf("group %d in session %s: %w", index, sessionID, catalog.ErrNotFound)
	}
	return groups[index], nil
}

// ApplyRename renames every member of a group whose name differs from name.
// An empty name uses the group's canonical name.
func (s *Service) ApplyRename(ctx context.Context, sessionID string, index int, name string) (batch.Result, error) {
	g, err := s.duplicateGroup(sessionID, index)
	if err != nil {
		return batch.Result{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = g.CanonicalName
	}
	if name == "" {
		return batch.Result{}, catalog.Configurationf("no name to apply")
	}

	var targets []catalog.Artist
	for _, m := range g.Members {
		if m.Name != name {
			targets = append(targets, m)
		}
	}

	res := batch.Run(ctx, s.opts.Concurrency, targets,
		func(a catalog.Artist) (string, string) {
			return a.ID, fmt.Sprintf("rename %q to %q", a.Name, name)
		},
		func(ctx context.Context, a catalog.Artist) error {
			return s.catalog.RenameArtist(ctx, a.ID, name)
		})
	logResult(s.logger, "group renamed", res)
	s.bus.Publish(event.New(event.ArtistRenamed, "name", name, "renamed", res.Succeeded, "failed", res.Failed()))
	return res, nil
}

// MergeGroup folds every other member of a group into winnerID. An empty
// winnerID picks the member with the most tracks.
func (s *Service) MergeGroup(ctx context.Context, sessionID string, index int, winnerID string) (*MergeResult, error) {
	g, err := s.duplicateGroup(sessionID, index)
	if err != nil {
		return nil, err
	}
	if len(g.Members) < 2 {
		return nil, catalog.Configurationf("group %d has nothing to merge", index)
	}

	winner, ok := pickWinner(g.Members, winnerID)
	if !ok {
		return nil, catalog.Configurationf("artist %q is not a member of group %d", winnerID, index)
	}

	winnerTracks, err := s.catalog.ListTracksForArtist(ctx, winner.ID)
	if err != nil {
		return nil, fmt.Errorf("listing tracks for %q: %w", winner.Name, err)
	}

	res := &MergeResult{Winner: winner, RescanAdvised: true}
	for _, loser := range g.Members {
		if loser.ID == winner.ID {
			continue
		}
		loserTracks, err := s.catalog.ListTracksForArtist(ctx, loser.ID)
		if err != nil {
			res.Reports = append(res.Reports, merge.Report{
				Winner: winner,
				Loser:  loser,
				Errors: []batch.ItemError{{
					ID:          loser.ID,
					Description: fmt.Sprintf("list tracks for %q", loser.Name),
					Cause:       err,
				}},
			})
			continue
		}
		rep := s.resolver.Merge(ctx, winner, loser, winnerTracks, loserTracks)
		res.Reports = append(res.Reports, rep)
		s.bus.Publish(event.New(event.ArtistMerged,
			"winner_id", winner.ID, "loser_id", loser.ID,
			"deleted_duplicates", rep.DeletedDuplicates, "reassigned", rep.Reassigned))
	}
	return res, nil
}

func pickWinner(members []catalog.Artist, id string) (catalog.Artist, bool) {
	if id == "" {
		best := members[0]
		for _, m := range members[1:] {
			if m.TrackCount > best.TrackCount {
				best = m
			}
		}
		return best, true
	}
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return catalog.Artist{}, false
}

// ScanPairs lists every pair of artists scoring at or above threshold. A zero
// threshold uses the configured one.
func (s *Service) ScanPairs(ctx context.Context, threshold int) (*Scan[[]dedupe.Pair], error) {
	if threshold == 0 {
		threshold = s.opts.PairThreshold
	}
	artists, err := s.catalog.ListArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing artists: %w", err)
	}
	pairs, err := dedupe.FindPairs(artists, threshold)
	if err != nil {
		return nil, err
	}
	if pairs == nil {
		pairs = []dedupe.Pair{}
	}
	sess := s.sessions.Create(session.KindPairs, pairs)
	s.logger.Info("pair scan complete",
		slog.Int("artists", len(artists)),
		slog.Int("pairs", len(pairs)),
		slog.Int("threshold", threshold))
	s.bus.Publish(event.New(event.ScanPairs, "session_id", sess.ID, "pairs", len(pairs)))
	return newScan(sess, pairs), nil
}
