package api

import "net/http"

type thresholdRequest struct {
	Threshold int `json:"threshold"`
}

func (r *Router) handleScanDuplicates(w http.ResponseWriter, req *http.Request) {
	var body thresholdRequest
	if !decodeBody(w, req, &body) {
		return
	}
	scan, err := r.cleanup.ScanDuplicates(req.Context(), body.Threshold)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (r *Router) handleScanPairs(w http.ResponseWriter, req *http.Request) {
	var body thresholdRequest
	if !decodeBody(w, req, &body) {
		return
	}
	scan, err := r.cleanup.ScanPairs(req.Context(), body.Threshold)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (r *Router) handleRenameGroup(w http.ResponseWriter, req *http.Request) {
	index, ok := pathIndex(w, req, "index")
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	res, err := r.cleanup.ApplyRename(req.Context(), req.PathValue("session"), index, body.Name)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (r *Router) handleMergeGroup(w http.ResponseWriter, req *http.Request) {
	index, ok := pathIndex(w, req, "index")
	if !ok {
		return
	}
	var body struct {
		WinnerID string `json:"winner_id"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	res, err := r.cleanup.MergeGroup(req.Context(), req.PathValue("session"), index, body.WinnerID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
