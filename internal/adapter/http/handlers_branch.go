package http

import (
	"net/http"

	"github.com/Strob0t/CodeForge/internal/domain/branch"
)

// ListBranches handles GET /v0/projects/{id}/branches
func (h *Handlers) ListBranches(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Branches.List, "project not found")(w, r)
}

// GetBranch handles GET /v0/branches/{id}
func (h *Handlers) GetBranch(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Branches.Get, "branch not found")(w, r)
}

// DeleteBranch handles DELETE /v0/branches/{id}
func (h *Handlers) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Branches.Delete, "branch not found")(w, r)
}

// ResetBranch handles POST /v0/projects/{id}/branches/{branchId}/reset
func (h *Handlers) ResetBranch(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	branchID := urlParam(r, "branchId")

	req, ok := readJSON[branch.ResetRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}

	head, err := h.Branches.Reset(r.Context(), projectID, branchID, req)
	if err != nil {
		writeDomainError(w, err, "reset branch failed")
		return
	}
	writeJSON(w, http.StatusOK, head)
}
