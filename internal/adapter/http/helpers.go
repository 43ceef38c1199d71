package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/CodeForge/internal/domain"
	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
)

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request, bodyLimit int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// requireField writes a 400 error and returns false when value is empty.
func requireField(w http.ResponseWriter, value, fieldName string) bool {
	if value == "" {
		writeError(w, http.StatusBadRequest, fieldName+" is required")
		return false
	}
	return true
}

// sanitizeName validates a name is safe for use in file paths.
// It rejects names containing path separators, dots-prefix, or other traversal patterns.
func sanitizeName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if len(name) > 128 {
		return errors.New("name too long (max 128 chars)")
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.New("name must not contain path separators")
	}
	if strings.Contains(name, "..") {
		return errors.New("name must not contain '..'")
	}
	if name[0] == '.' {
		return errors.New("name must not start with '.'")
	}
	cleaned := filepath.Clean(name)
	if cleaned != name {
		return errors.New("name contains invalid path characters")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeDomainError(w http.ResponseWriter, err error, fallbackMsg string) {
	var bErr *bcherr.Error
	if errors.As(err, &bErr) {
		writeBcherr(w, bErr)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, fallbackMsg)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "resource was modified by another request")
	case errors.Is(err, domain.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
		writeError(w, http.StatusBadRequest, msg)
	case strings.Contains(err.Error(), "invalid input syntax"):
		writeError(w, http.StatusBadRequest, "invalid identifier format")
	case strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "SQLSTATE 23505"):
		writeError(w, http.StatusConflict, "resource already exists")
	default:
		slog.Error("unhandled domain error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// bcherrStatus maps the transport-independent error taxonomy of
// spec.md §7 onto HTTP status codes.
var bcherrStatus = map[bcherr.Kind]int{
	bcherr.KindBadRequest:       http.StatusBadRequest,
	bcherr.KindUnauthorized:     http.StatusUnauthorized,
	bcherr.KindForbidden:        http.StatusForbidden,
	bcherr.KindNotFound:         http.StatusNotFound,
	bcherr.KindConflict:         http.StatusConflict,
	bcherr.KindTooManyRequests:  http.StatusTooManyRequests,
	bcherr.KindFailedDependency: http.StatusFailedDependency,
	bcherr.KindPaymentRequired:  http.StatusPaymentRequired,
	bcherr.KindInternal:         http.StatusInternalServerError,
}

// writeBcherr renders a *bcherr.Error as JSON, logging internal kinds
// server-side and never leaking their cause to the client.
func writeBcherr(w http.ResponseWriter, err *bcherr.Error) {
	status, ok := bcherrStatus[err.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if err.Kind == bcherr.KindInternal {
		slog.Error("internal error", "message", err.Message, "cause", errors.Unwrap(err))
		writeError(w, status, "internal server error")
		return
	}

	if err.Kind == bcherr.KindTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}

	writeError(w, status, err.Message)
}

// writeInternalError logs the actual error server-side and returns a generic message to the client.
func writeInternalError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// ---------------------------------------------------------------------------
// Pagination (spec.md §6: per_page 1-255 default 8, page >=1, sort, direction)
// ---------------------------------------------------------------------------

const (
	defaultPerPage = 8
	maxPerPage     = 255
)

type pageParams struct {
	Page      int
	PerPage   int
	Sort      string
	Direction string
}

// parsePageParams reads per_page, page, sort and direction query params.
// A per_page outside [1,255] or a page below 1 is not clamped; it falls
// back to its default (8 and 1), and any direction other than "desc"
// means "asc". Invalid values never produce an error, matching the
// teacher's lenient env parsing style.
func parsePageParams(r *http.Request) pageParams {
	p := pageParams{Page: 1, PerPage: defaultPerPage, Direction: "asc"}

	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v >= 1 && v <= maxPerPage {
		p.PerPage = v
	}
	p.Sort = q.Get("sort")
	if d := q.Get("direction"); d == "desc" {
		p.Direction = "desc"
	}

	return p
}

// writePaginated sorts items by the given less function (applied in
// ascending order, reversed when p.Direction is "desc"), slices out the
// requested page, and writes the result with X-Total-Count set to the
// pre-slice length.
func writePaginated[T any](w http.ResponseWriter, items []T, p pageParams, less func(a, b T) bool) {
	if items == nil {
		items = []T{}
	}

	if less != nil {
		sort.SliceStable(items, func(i, j int) bool {
			if p.Direction == "desc" {
				return less(items[j], items[i])
			}
			return less(items[i], items[j])
		})
	}

	total := len(items)
	start := (p.Page - 1) * p.PerPage
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, items[start:end])
}
