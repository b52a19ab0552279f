// Package api exposes the cleanup service over a JSON HTTP API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/sydlexius/crate/internal/api/middleware"
	"github.com/sydlexius/crate/internal/cleanup"
	"github.com/sydlexius/crate/internal/event"
	"github.com/sydlexius/crate/internal/logging"
	"github.com/sydlexius/crate/internal/session"
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Cleanup    *cleanup.Service
	Sessions   *session.Store
	Audit      *event.Audit
	LogManager *logging.Manager
	// RateLimiter guards the routes that scan or mutate the catalog. Nil
	// disables limiting.
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
	BasePath    string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	cleanup     *cleanup.Service
	sessions    *session.Store
	audit       *event.Audit
	logManager  *logging.Manager
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
	basePath    string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		cleanup:     deps.Cleanup,
		sessions:    deps.Sessions,
		audit:       deps.Audit,
		logManager:  deps.LogManager,
		rateLimiter: deps.RateLimiter,
		logger:      deps.Logger.With(slog.String("component", "api")),
		basePath:    deps.BasePath,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	bp := r.basePath
	limit := r.limited

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)
	mux.HandleFunc("GET "+bp+"/api/v1/sessions/{id}", r.handleGetSession)
	mux.HandleFunc("GET "+bp+"/api/v1/events", r.handleRecentEvents)

	// Duplicate artists
	mux.HandleFunc("POST "+bp+"/api/v1/duplicates/scan", limit(r.handleScanDuplicates))
	mux.HandleFunc("POST "+bp+"/api/v1/duplicates/{session}/groups/{index}/rename", limit(r.handleRenameGroup))
	mux.HandleFunc("POST "+bp+"/api/v1/duplicates/{session}/groups/{index}/merge", limit(r.handleMergeGroup))
	mux.HandleFunc("POST "+bp+"/api/v1/pairs/scan", limit(r.handleScanPairs))

	// Junk artists
	mux.HandleFunc("POST "+bp+"/api/v1/junk/scan", limit(r.handleScanJunk))
	mux.HandleFunc("POST "+bp+"/api/v1/junk/{session}/delete", limit(r.handleDeleteJunk))

	// Playlists
	mux.HandleFunc("POST "+bp+"/api/v1/playlists/scan", limit(r.handleScanPlaylists))
	mux.HandleFunc("POST "+bp+"/api/v1/playlists/{session}/delete", limit(r.handleDeletePlaylists))
	mux.HandleFunc("POST "+bp+"/api/v1/playlists/generate", limit(r.handleGeneratePlaylist))
	mux.HandleFunc("POST "+bp+"/api/v1/playlists/save", limit(r.handleSavePlaylist))

	// Playlist files on the media server host
	mux.HandleFunc("GET "+bp+"/api/v1/remote/playlist-files", limit(r.handleListPlaylistFiles))
	mux.HandleFunc("POST "+bp+"/api/v1/remote/playlist-files/delete", limit(r.handleDeletePlaylistFiles))

	mux.HandleFunc("POST "+bp+"/api/v1/library/rescan", limit(r.handleRescan))

	mux.HandleFunc("GET "+bp+"/api/v1/settings/logging", r.handleGetLogging)
	mux.HandleFunc("PUT "+bp+"/api/v1/settings/logging", r.handleUpdateLogging)

	// Apply logging to all requests
	return middleware.Logging(r.logger)(mux)
}

// limited wraps a handler with the rate limiter, if one is configured.
func (r *Router) limited(fn http.HandlerFunc) http.HandlerFunc {
	if r.rateLimiter == nil {
		return fn
	}
	return r.rateLimiter.Middleware(fn).ServeHTTP
}
