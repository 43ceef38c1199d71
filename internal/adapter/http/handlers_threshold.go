package http

import (
	"net/http"

	"github.com/Strob0t/CodeForge/internal/domain/threshold"
)

// ListThresholds handles GET /v0/projects/{id}/thresholds
func (h *Handlers) ListThresholds(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Thresholds.List, "project not found")(w, r)
}

// thresholdResponse bundles the active Threshold and the Model it is
// bound to, since most callers want both in one response.
type thresholdResponse struct {
	Threshold *threshold.Threshold `json:"threshold"`
	Model     *threshold.Model     `json:"model"`
}

// UpsertThreshold handles PUT /v0/projects/{id}/thresholds
// (branch/testbed/measure are named in the request body per spec.md §4.8).
func (h *Handlers) UpsertThreshold(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	req, ok := readJSON[threshold.CreateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	t, err := h.Thresholds.UpsertByNameID(r.Context(), projectID, req)
	if err != nil {
		writeDomainError(w, err, "upsert threshold failed")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GetThreshold handles GET /v0/projects/{id}/thresholds/lookup, resolving
// the triple from branch/testbed/measure query parameters.
func (h *Handlers) GetThreshold(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	q := r.URL.Query()
	branchID, testbedID, measureID := q.Get("branch"), q.Get("testbed"), q.Get("measure")
	if !requireField(w, branchID, "branch") || !requireField(w, testbedID, "testbed") || !requireField(w, measureID, "measure") {
		return
	}

	t, model, err := h.Thresholds.Get(r.Context(), projectID, branchID, testbedID, measureID)
	if err != nil {
		writeDomainError(w, err, "threshold not found")
		return
	}
	writeJSON(w, http.StatusOK, thresholdResponse{Threshold: t, Model: model})
}

// DeleteThreshold handles DELETE /v0/thresholds/{id}
func (h *Handlers) DeleteThreshold(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Thresholds.Delete, "threshold not found")(w, r)
}

// ListAlerts handles GET /v0/reports/{id}/alerts
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Thresholds.ListAlertsByReport, "report not found")(w, r)
}

// GetAlert handles GET /v0/alerts/{id}
func (h *Handlers) GetAlert(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Thresholds.GetAlert, "alert not found")(w, r)
}

// DismissAlert handles POST /v0/alerts/{id}/dismiss
func (h *Handlers) DismissAlert(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := h.Thresholds.DismissAlert(r.Context(), id); err != nil {
		writeDomainError(w, err, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
