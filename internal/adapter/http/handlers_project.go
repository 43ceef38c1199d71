package http

import (
	"net/http"

	"github.com/Strob0t/CodeForge/internal/domain/project"
	"github.com/Strob0t/CodeForge/internal/middleware"
)

// ListProjects handles GET /v0/organizations/{id}/projects
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Projects.ListByOrganization, "organization not found")(w, r)
}

// CreateProject handles POST /v0/organizations/{id}/projects
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	orgID := urlParam(r, "id")
	req, ok := readJSON[project.CreateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	p, err := h.Projects.Create(r.Context(), orgID, req)
	if err != nil {
		writeDomainError(w, err, "create project failed")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /v0/projects/{proj}
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	id := urlParam(r, "id")

	p, err := h.Projects.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	if claims != nil {
		if err := h.Projects.RequireReadAccess(r.Context(), p, claims.UserID); err != nil {
			writeDomainError(w, err, "project not found")
			return
		}
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProject handles PUT /v0/projects/{proj}
func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	req, ok := readJSON[project.UpdateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	p, err := h.Projects.Update(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /v0/projects/{proj}
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Projects.Delete, "project not found")(w, r)
}
