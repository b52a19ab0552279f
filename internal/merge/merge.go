// Package merge folds a losing artist record into a winning one, track by
// track.
package merge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
)

// Report is the outcome of one merge. Errors lists every failed step in the
// order the steps were issued; the merge is not rolled back on failure.
type Report struct {
	Winner            catalog.Artist    `json:"winner"`
	Loser             catalog.Artist    `json:"loser"`
	DeletedDuplicates int               `json:"deleted_duplicates"`
	Reassigned        int               `json:"reassigned"`
	LoserDeleted      bool              `json:"loser_deleted"`
	Errors            []batch.ItemError `json:"errors"`
}

// Resolver applies merges through the catalog.
type Resolver struct {
	catalog     catalog.Service
	concurrency int
	logger      *slog.Logger
}

// NewResolver creates a Resolver that issues at most concurrency track
// mutations at a time. Values below 1 mean one at a time.
func NewResolver(svc catalog.Service, concurrency int, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog:     svc,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "merge")),
	}
}

// Plan splits loser tracks into those duplicating a winner track by name
// and those only the loser has. Names compare case-folded and trimmed.
func Plan(winnerTracks, loserTracks []catalog.Track) (duplicates, unique []catalog.Track) {
	byName := make(map[string]string, len(winnerTracks))
	for _, t := range winnerTracks {
		byName[catalog.TrackKey(t.Name)] = t.ID
	}
	for _, t := range loserTracks {
		if _, ok := byName[catalog.TrackKey(t.Name)]; ok {
			duplicates = append(duplicates, t)
		} else {
			unique = append(unique, t)
		}
	}
	return duplicates, unique
}

// Merge deletes the loser's duplicate tracks, reassigns its unique tracks to
// the winner's name, renames the loser (ignoring failure) and finally deletes
// the loser record. Every step is attempted regardless of earlier failures.
func (r *Resolver) Merge(ctx context.Context, winner, loser catalog.Artist, winnerTracks, loserTracks []catalog.Track) Report {
	rep := Report{Winner: winner, Loser: loser, Errors: []batch.ItemError{}}
	duplicates, unique := Plan(winnerTracks, loserTracks)

	deleted := batch.Run(ctx, r.concurrency, duplicates,
		func(t catalog.Track) (string, string) {
			return t.ID, fmt.Sprintf("delete duplicate track %q", t.Name)
		},
		func(ctx context.Context, t catalog.Track) error {
			return r.catalog.DeleteItem(ctx, t.ID)
		})
	rep.DeletedDuplicates = deleted.Succeeded
	rep.Errors = append(rep.Errors, deleted.Errors...)

	reassigned := batch.Run(ctx, r.concurrency, unique,
		func(t catalog.Track) (string, string) {
			return t.ID, fmt.Sprintf("reassign track %q to %q", t.Name, winner.Name)
		},
		func(ctx context.Context, t catalog.Track) error {
			return r.catalog.ReassignTrackArtist(ctx, t.ID, winner.Name)
		})
	rep.Reassigned = reassigned.Succeeded
	rep.Errors = append(rep.Errors, reassigned.Errors...)

	if err := r.catalog.RenameArtist(ctx, loser.ID, winner.Name); err != nil {
		r.logger.Debug("renaming retired artist failed",
			slog.String("artist_id", loser.ID), slog.String("error", err.Error()))
	}

	if err := r.catalog.DeleteItem(ctx, loser.ID); err != nil {
		rep.Errors = append(rep.Errors, batch.ItemError{
			ID:          loser.ID,
			Description: fmt.Sprintf("delete artist %q", loser.Name),
			Cause:       err,
		})
	} else {
		rep.LoserDeleted = true
	}

	r.logger.Info("artist merged",
		slog.String("winner", winner.Name),
		slog.String("loser_id", loser.ID),
		slog.Int("deleted_duplicates", rep.DeletedDuplicates),
		slog.Int("reassigned", rep.Reassigned),
		slog.Int("errors", len(rep.Errors)))
	return rep
}
