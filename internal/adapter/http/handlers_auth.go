package http

import (
	"net/http"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/user"
	"github.com/Strob0t/CodeForge/internal/middleware"
)

// refreshRequest is the body of POST /v0/auth/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /v0/auth/signup
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.CreateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	u, err := h.Tokens.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Login handles POST /v0/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.LoginRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	resp, refreshToken, err := h.Tokens.Login(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		user.LoginResponse
		RefreshToken string `json:"refresh_token"`
	}{*resp, refreshToken})
}

// Refresh handles POST /v0/auth/refresh
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON[refreshRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}

	resp, newRefresh, err := h.Tokens.RefreshTokens(r.Context(), body.RefreshToken)
	if err != nil {
		writeDomainError(w, err, "invalid or expired refresh token")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		user.LoginResponse
		RefreshToken string `json:"refresh_token"`
	}{*resp, newRefresh})
}

// Logout handles POST /v0/auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Tokens.Logout(r.Context(), claims.UserID, claims.JTI, time.Unix(claims.Expiry, 0)); err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ChangePassword handles POST /v0/auth/change-password
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	req, ok := readJSON[user.ChangePasswordRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	if err := h.Tokens.ChangePassword(r.Context(), claims.UserID, req); err != nil {
		writeDomainError(w, err, "change password failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}

// GetCurrentUser handles GET /v0/auth/me
func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	u, err := h.Tokens.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// CreateAPIKey handles POST /v0/auth/api-keys
func (h *Handlers) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	req, ok := readJSON[user.CreateAPIKeyRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	resp, err := h.Tokens.CreateAPIKey(r.Context(), claims.UserID, req)
	if err != nil {
		writeDomainError(w, err, "create api key failed")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListAPIKeys handles GET /v0/auth/api-keys
func (h *Handlers) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	keys, err := h.Tokens.ListAPIKeys(r.Context(), claims.UserID, user.KindAPI)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if keys == nil {
		keys = []user.APIKey{}
	}
	writeJSON(w, http.StatusOK, keys)
}

// DeleteAPIKey handles DELETE /v0/auth/api-keys/{id}
func (h *Handlers) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := urlParam(r, "id")
	if err := h.Tokens.DeleteAPIKey(r.Context(), id, claims.UserID); err != nil {
		writeDomainError(w, err, "api key not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSetupStatus handles GET /v0/auth/setup-status
func (h *Handlers) GetSetupStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Tokens.GetSetupStatus(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ListUsers handles GET /v0/users (admin only)
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Tokens.ListUsers(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if users == nil {
		users = []user.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUser handles PUT /v0/users/{id} (admin only)
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	req, ok := readJSON[user.UpdateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	u, err := h.Tokens.UpdateUser(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DeleteUser handles DELETE /v0/users/{id} (admin only)
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := h.Tokens.DeleteUser(r.Context(), id); err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
