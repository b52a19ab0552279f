package catalog

import (
	"errors"
	"fmt"
)

// Error classes shared by the engine and its collaborators. Wrap them with
// %w and test with errors.Is.
var (
	// ErrConfiguration marks invalid input rejected before any work runs:
	// a threshold outside its range or an empty input set.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound marks an id that no longer exists at act time.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied marks a mutation the server refused.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnavailable marks an unreachable collaborator. It is never retried here.
	ErrUnavailable = errors.New("unavailable")

	// ErrRejected marks any other request the server refused as malformed.
	ErrRejected = errors.New("request rejected")
)

// StatusError carries the HTTP status of a failed catalog request and
// unwraps to the matching error class.
type StatusError struct {
	Op     string
	Status int
	Body   string
	Class  error
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Class)
	}
	return fmt.Sprintf("%s: status %d: %v: %s", e.Op, e.Status, e.Class, e.Body)
}

func (e *StatusError) Unwrap() error { return e.Class }

// ClassifyStatus maps an HTTP status code to an error class.
func ClassifyStatus(status int) error {
	switch {
	case status == 404:
		return ErrNotFound
	case status == 401 || status == 403:
		return ErrPermissionDenied
	case status >= 500 || status == 429:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}

// Configurationf builds an ErrConfiguration with a formatted detail.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
