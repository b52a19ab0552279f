package api

import "net/http"

func (r *Router) handleListPlaylistFiles(w http.ResponseWriter, req *http.Request) {
	files, err := r.cleanup.ListPlaylistFiles(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (r *Router) handleDeletePlaylistFiles(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Paths []string `json:"paths"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	res, err := r.cleanup.DeletePlaylistFiles(req.Context(), body.Paths)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"succeeded":      res.Succeeded,
		"errors":         res.Errors,
		"rescan_advised": res.Succeeded > 0,
	})
}

func (r *Router) handleRescan(w http.ResponseWriter, req *http.Request) {
	if err := r.cleanup.Rescan(req.Context()); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scan started"})
}
