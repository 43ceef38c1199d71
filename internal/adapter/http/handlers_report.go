package http

import (
	"net/http"

	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/domain/report"
	"github.com/Strob0t/CodeForge/internal/middleware"
)

// IngestReport handles POST /v0/projects/{id}/reports, spec.md §4.6.
// The project-scope permission check (create_report) happens here,
// ahead of the service call, since it depends on the path-scoped
// project rather than the caller's identity alone.
func (h *Handlers) IngestReport(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}

	projectID := urlParam(r, "id")
	if err := h.Projects.RequireRole(r.Context(), projectID, claims.UserID, permission.RoleEditor); err != nil {
		writeDomainError(w, err, "forbidden")
		return
	}

	req, ok := readJSON[report.IngestRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}

	result, err := h.Ingest.Ingest(r.Context(), projectID, claims.UserID, req)
	if err != nil {
		writeDomainError(w, err, "ingest report failed")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// IngestReportByRef handles POST /v0/run: the project is named by
// req.ProjectRef in the body instead of the URL path, so the permission
// check happens after decoding rather than up front. The endpoint is not
// anonymous: a request without authenticated claims gets 401.
func (h *Handlers) IngestReportByRef(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}

	req, ok := readJSON[report.IngestRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.ProjectRef, "project") {
		return
	}

	if err := h.Projects.RequireRole(r.Context(), req.ProjectRef, claims.UserID, permission.RoleEditor); err != nil {
		writeDomainError(w, err, "forbidden")
		return
	}

	result, err := h.Ingest.Ingest(r.Context(), req.ProjectRef, claims.UserID, req)
	if err != nil {
		writeDomainError(w, err, "ingest report failed")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
