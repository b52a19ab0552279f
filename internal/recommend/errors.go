package recommend

import (
	"errors"
	"fmt"
	"time"

	"github.com/sydlexius/crate/internal/catalog"
)

// ErrUnavailable indicates a transient failure of a recommendation service
// (rate-limited, timeout, server error). It matches catalog.ErrUnavailable.
type ErrUnavailable struct {
	Service    string
	Cause      error
	RetryAfter time.Duration
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("recommendation service %s unavailable: %v", e.Service, e.Cause)
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, catalog.ErrUnavailable) hold.
func (e *ErrUnavailable) Is(target error) bool { return target == catalog.ErrUnavailable }

// ErrAuthRequired indicates the service needs credentials but none are configured.
type ErrAuthRequired struct {
	Service string
}

func (e *ErrAuthRequired) Error() string {
	return fmt.Sprintf("recommendation service %s: credentials not configured", e.Service)
}

// Is makes errors.Is(err, catalog.ErrConfiguration) hold.
func (e *ErrAuthRequired) Is(target error) bool { return target == catalog.ErrConfiguration }

// IsUnavailable reports whether err is a transient service failure.
func IsUnavailable(err error) bool {
	var u *ErrUnavailable
	return errors.As(err, &u)
}
