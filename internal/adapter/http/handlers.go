// Package http mounts Bencher's HTTP/JSON adapter: thin handlers that
// decode requests, call the service layer, and map typed errors onto the
// taxonomy of spec.md §7. Framing itself stays a pass-through; the error
// shape is the one convention shared across every endpoint. The
// pagination helpers in helpers.go are not used by any list endpoint.
package http

import (
	"net/http"

	"github.com/Strob0t/CodeForge/internal/service"
)

// Limits bounds request-body sizes accepted by the JSON decoders.
type Limits struct {
	MaxRequestBodySize int64
}

// Handlers holds every service the HTTP adapter dispatches to. One
// instance is constructed at startup and its methods mounted onto the
// chi router by MountRoutes.
type Handlers struct {
	Organizations *service.OrganizationService
	Projects      *service.ProjectService
	Branches      *service.BranchService
	Benchmarks    *service.BenchmarkService
	Testbeds      *service.TestbedService
	Thresholds    *service.ThresholdService
	Ingest        *service.IngestService
	Tokens        *service.TokenService

	Limits Limits
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
