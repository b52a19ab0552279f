package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sydlexius/crate/internal/api/middleware"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/recommend"
	"github.com/sydlexius/crate/internal/version"
)

// maxBodyBytes caps request bodies; the largest is a list of ids.
const maxBodyBytes = 1 << 20

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleGetSession(w http.ResponseWriter, req *http.Request) {
	sess, err := r.sessions.Get(req.PathValue("id"), "")
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (r *Router) handleRecentEvents(w http.ResponseWriter, req *http.Request) {
	if r.audit == nil {
		writeError(w, http.StatusServiceUnavailable, "event audit not available")
		return
	}
	writeJSON(w, http.StatusOK, r.audit.Recent())
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, req *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathIndex parses a non-negative integer path value.
func pathIndex(w http.ResponseWriter, req *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(req.PathValue(name))
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// statusFor maps an error class to the HTTP status returned to the caller.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, catalog.ErrRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError reports a service error. Unclassified errors are logged
// and hidden from the caller.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		r.logger.Error("request failed",
			"request_id", middleware.RequestID(req.Context()),
			"path", req.URL.Path,
			"error", err)
		writeError(w, status, "internal error")
		return
	}

	var unavailable *recommend.ErrUnavailable
	if errors.As(err, &unavailable) && unavailable.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(unavailable.RetryAfter.Seconds())))
	}
	if status == http.StatusBadGateway {
		r.logger.Warn("upstream failure", "path", req.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
