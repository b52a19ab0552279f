package api

import (
	"net/http"

	"github.com/sydlexius/crate/internal/playlist"
)

func (r *Router) handleScanPlaylists(w http.ResponseWriter, req *http.Request) {
	scan, err := r.cleanup.ScanPlaylists(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

// handleDeletePlaylists deletes the listed playlists, or the pre-selected
// ones when "ids" is absent.
func (r *Router) handleDeletePlaylists(w http.ResponseWriter, req *http.Request) {
	var body idsRequest
	if !decodeBody(w, req, &body) {
		return
	}
	res, err := r.cleanup.DeletePlaylists(req.Context(), req.PathValue("session"), body.IDs)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (r *Router) handleGeneratePlaylist(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Artists string `json:"artists"`
		Style   string `json:"style"`
		Count   int    `json:"count"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	if body.Count == 0 {
		body.Count = playlist.DefaultTrackCount
	}
	gen, err := r.cleanup.PreviewPlaylist(req.Context(), body.Artists, body.Style, body.Count)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, gen)
}

func (r *Router) handleSavePlaylist(w http.ResponseWriter, req *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	if body.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	id, err := r.cleanup.SavePlaylist(req.Context(), body.SessionID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"playlist_id": id})
}
