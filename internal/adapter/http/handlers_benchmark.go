package http

import (
	"net/http"

	"github.com/Strob0t/CodeForge/internal/domain/benchmark"
)

// ListBenchmarks handles GET /v0/projects/{id}/benchmarks
func (h *Handlers) ListBenchmarks(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Benchmarks.ListBenchmarks, "project not found")(w, r)
}

// CreateBenchmark handles POST /v0/projects/{id}/benchmarks
func (h *Handlers) CreateBenchmark(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	req, ok := readJSON[benchmark.CreateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	b, err := h.Benchmarks.CreateBenchmark(r.Context(), projectID, req)
	if err != nil {
		writeDomainError(w, err, "create benchmark failed")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// GetBenchmark handles GET /v0/benchmarks/{id}
func (h *Handlers) GetBenchmark(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Benchmarks.GetBenchmark, "benchmark not found")(w, r)
}

// DeleteBenchmark handles DELETE /v0/benchmarks/{id}
func (h *Handlers) DeleteBenchmark(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Benchmarks.DeleteBenchmark, "benchmark not found")(w, r)
}

// ListMeasures handles GET /v0/projects/{id}/measures
func (h *Handlers) ListMeasures(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Benchmarks.ListMeasures, "project not found")(w, r)
}

// CreateMeasure handles POST /v0/projects/{id}/measures
func (h *Handlers) CreateMeasure(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	req, ok := readJSON[benchmark.CreateRequest](w, r, h.Limits.MaxRequestBodySize)
	if !ok {
		return
	}
	m, err := h.Benchmarks.CreateMeasure(r.Context(), projectID, req)
	if err != nil {
		writeDomainError(w, err, "create measure failed")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMeasure handles GET /v0/measures/{id}
func (h *Handlers) GetMeasure(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Benchmarks.GetMeasure, "measure not found")(w, r)
}

// DeleteMeasure handles DELETE /v0/measures/{id}
func (h *Handlers) DeleteMeasure(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Benchmarks.DeleteMeasure, "measure not found")(w, r)
}
