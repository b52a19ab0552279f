package api

import "net/http"

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (r *Router) handleScanJunk(w http.ResponseWriter, req *http.Request) {
	scan, err := r.cleanup.ScanJunk(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (r *Router) handleDeleteJunk(w http.ResponseWriter, req *http.Request) {
	var body idsRequest
	if !decodeBody(w, req, &body) {
		return
	}
	res, err := r.cleanup.DeleteJunk(req.Context(), req.PathValue("session"), body.IDs)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
