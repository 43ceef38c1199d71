package http

import (
	"net/http"

	"github.com/Strob0t/CodeForge/internal/domain/organization"
	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/middleware"
)

// ListOrganizations handles GET /v0/organizations
func (h *Handlers) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	orgs, err := h.Organizations.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if orgs == nil {
		orgs = []organization.Organization{}
	}
	writeJSON(w, http.StatusOK, orgs)
}

// CreateOrganization handles POST /v0/organizations
func (h *Handlers) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	req, ok := readJSON[organization.CreateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	org, err := h.Organizations.Create(r.Context(), claims.UserID, req)
	if err != nil {
		writeDomainError(w, err, "create organization failed")
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// GetOrganization handles GET /v0/organizations/{org}
func (h *Handlers) GetOrganization(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Organizations.Get, "organization not found")(w, r)
}

// UpdateOrganization handles PUT /v0/organizations/{org}
func (h *Handlers) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	req, ok := readJSON[organization.UpdateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	org, err := h.Organizations.Update(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err, "organization not found")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// DeleteOrganization handles DELETE /v0/organizations/{org}
func (h *Handlers) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Organizations.Delete, "organization not found")(w, r)
}

// ListOrganizationMembers handles GET /v0/organizations/{org}/members
func (h *Handlers) ListOrganizationMembers(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Organizations.ListMembers, "organization not found")(w, r)
}

// AddOrganizationMember handles POST /v0/organizations/{org}/members
func (h *Handlers) AddOrganizationMember(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	req, ok := readJSON[organization.AddMemberRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	role, err := h.Organizations.AddMember(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err, "add member failed")
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

// UpdateOrganizationMemberRole handles PUT /v0/organizations/{org}/members/{userId}
func (h *Handlers) UpdateOrganizationMemberRole(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	userID := urlParam(r, "userId")
	req, ok := readJSON[struct {
		Role permission.Role `json:"role"`
	}](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	if err := h.Organizations.UpdateMemberRole(r.Context(), id, userID, req.Role); err != nil {
		writeDomainError(w, err, "member not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveOrganizationMember handles DELETE /v0/organizations/{org}/members/{userId}
func (h *Handlers) RemoveOrganizationMember(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	userID := urlParam(r, "userId")
	if err := h.Organizations.RemoveMember(r.Context(), id, userID); err != nil {
		writeDomainError(w, err, "member not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
