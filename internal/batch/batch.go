// Package batch runs best-effort per-item operations and collects their
// failures without stopping at the first one.
package batch

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ItemError records one failed item of a batch.
type ItemError struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Cause       error  `json:"-"`
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Description, e.Cause)
}

func (e ItemError) Unwrap() error { return e.Cause }

// MarshalJSON renders the cause as a string.
func (e ItemError) MarshalJSON() ([]byte, error) {
	cause := ""
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return json.Marshal(struct {
		ID          string `json:"id,omitempty"`
		Description string `json:"description"`
		Cause       string `json:"cause"`
	}{e.ID, e.Description, cause})
}

// Result is the outcome of a batch: a success count and the failures in
// input order. A non-empty Errors means a partial failure.
type Result struct {
	Succeeded int         `json:"succeeded"`
	Errors    []ItemError `json:"errors"`
}

// Failed returns the number of failed items.
func (r Result) Failed() int { return len(r.Errors) }

// Append adds other's counts and errors to r.
func (r *Result) Append(other Result) {
	r.Succeeded += other.Succeeded
	r.Errors = append(r.Errors, other.Errors...)
}

// Run calls fn for every item, at most limit at a time (limit < 1 means one
// at a time). Every item is attempted. Outcomes are aggregated in input order
// so the result does not depend on completion order. describe labels an item
// in the error list.
func Run[T any](ctx context.Context, limit int, items []T, describe func(T) (id, desc string), fn func(context.Context, T) error) Result {
	if limit < 1 {
		limit = 1
	}
	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			errs[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Errors: []ItemError{}}
	for i, err := range errs {
		if err == nil {
			res.Succeeded++
			continue
		}
		id, desc := describe(items[i])
		res.Errors = append(res.Errors, ItemError{ID: id, Description: desc, Cause: err})
	}
	return res
}
