package catalog

import (
	"errors"
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrPermissionDenied},
		{http.StatusForbidden, ErrPermissionDenied},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusTooManyRequests, ErrUnavailable},
		{http.StatusBadRequest, ErrRejected},
	}
	for _, tt := range tests {
		if got := ClassifyStatus(tt.status); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatusError_Unwrap(t *testing.T) {
	err := error(&StatusError{Op: "deleting item", Status: 404, Class: ErrNotFound})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected errors.Is(err, ErrNotFound) for %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("did not expect ErrUnavailable")
	}
}

func TestConfigurationf(t *testing.T) {
	err := Configurationf("threshold %d out of range", 12)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if err.Error() != "configuration error: threshold 12 out of range" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestTrackKey(t *testing.T) {
	if TrackKey("  Paranoid Android ") != TrackKey("paranoid android") {
		t.Error("expected case-folded trimmed keys to match")
	}
}
