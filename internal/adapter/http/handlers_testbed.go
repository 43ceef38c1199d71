package http

import (
	"net/http"

	"github.com/Strob0t/CodeForge/internal/domain/testbed"
)

// ListTestbeds handles GET /v0/projects/{id}/testbeds
func (h *Handlers) ListTestbeds(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Testbeds.List, "project not found")(w, r)
}

// CreateTestbed handles POST /v0/projects/{id}/testbeds
func (h *Handlers) CreateTestbed(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	req, ok := readJSON[testbed.CreateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	tb, err := h.Testbeds.Create(r.Context(), projectID, req)
	if err != nil {
		writeDomainError(w, err, "create testbed failed")
		return
	}
	writeJSON(w, http.StatusCreated, tb)
}

// GetTestbed handles GET /v0/testbeds/{id}
func (h *Handlers) GetTestbed(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Testbeds.Get, "testbed not found")(w, r)
}

// DeleteTestbed handles DELETE /v0/testbeds/{id}
func (h *Handlers) DeleteTestbed(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Testbeds.Delete, "testbed not found")(w, r)
}
