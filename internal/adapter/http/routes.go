package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/CodeForge/internal/middleware"
	"github.com/Strob0t/CodeForge/internal/port/database"
	"github.com/Strob0t/CodeForge/internal/ratelimit"
	"github.com/Strob0t/CodeForge/internal/service"
)

// MountRoutes registers every endpoint of spec.md §6 on the given chi
// router. store backs the Auth middleware's MustChangePassword check;
// rates supplies the per-class sliding-window limiters of spec.md §4.4.
func MountRoutes(r chi.Router, h *Handlers, tokens *service.TokenService, store database.Store, authEnabled bool, rates *ratelimit.Registry, corsOrigin string) {
	r.Use(middleware.RequestID)
	r.Use(Logger)
	r.Use(SecurityHeaders)
	r.Use(CORS(corsOrigin))
	r.Use(middleware.RateLimit(rates, ratelimit.ClassPublicRequest, nil))

	r.Get("/health", h.HandleHealth)

	r.Route("/v0", func(r chi.Router) {
		// Signup/login are rate-limited per spec.md §4.4's auth_attempt
		// class before Auth even runs, since they are its entry point.
		r.With(middleware.RateLimit(rates, ratelimit.ClassAuthAttempt, nil)).Post("/auth/signup", h.Register)
		r.With(middleware.RateLimit(rates, ratelimit.ClassAuthAttempt, nil)).Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)
		r.Get("/auth/setup-status", h.GetSetupStatus)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens, store, authEnabled))
			r.Use(middleware.RateLimit(rates, ratelimit.ClassUserRequest, middleware.UserKeyFunc))

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.GetCurrentUser)
			r.Post("/auth/change-password", h.ChangePassword)
			r.Post("/auth/api-keys", h.CreateAPIKey)
			r.Get("/auth/api-keys", h.ListAPIKeys)
			r.Delete("/auth/api-keys/{id}", h.DeleteAPIKey)

			// Organizations
			r.Get("/organizations", h.ListOrganizations)
			r.Post("/organizations", h.CreateOrganization)
			r.Get("/organizations/{id}", h.GetOrganization)
			r.Put("/organizations/{id}", h.UpdateOrganization)
			r.Delete("/organizations/{id}", h.DeleteOrganization)
			r.Get("/organizations/{id}/members", h.ListOrganizationMembers)
			r.With(middleware.RateLimit(rates, ratelimit.ClassInvite, middleware.UserKeyFunc)).
				Post("/organizations/{id}/members", h.AddOrganizationMember)
			r.Put("/organizations/{id}/members/{userId}", h.UpdateOrganizationMemberRole)
			r.Delete("/organizations/{id}/members/{userId}", h.RemoveOrganizationMember)

			// Projects (nested under organizations + direct access)
			r.Get("/organizations/{id}/projects", h.ListProjects)
			r.Post("/organizations/{id}/projects", h.CreateProject)
			r.Get("/projects/{id}", h.GetProject)
			r.Put("/projects/{id}", h.UpdateProject)
			r.Delete("/projects/{id}", h.DeleteProject)

			// Branches
			r.Get("/projects/{id}/branches", h.ListBranches)
			r.Get("/branches/{id}", h.GetBranch)
			r.Delete("/branches/{id}", h.DeleteBranch)
			r.Post("/projects/{id}/branches/{branchId}/reset", h.ResetBranch)

			// Testbeds
			r.Get("/projects/{id}/testbeds", h.ListTestbeds)
			r.Post("/projects/{id}/testbeds", h.CreateTestbed)
			r.Get("/testbeds/{id}", h.GetTestbed)
			r.Delete("/testbeds/{id}", h.DeleteTestbed)

			// Benchmarks & Measures
			r.Get("/projects/{id}/benchmarks", h.ListBenchmarks)
			r.Post("/projects/{id}/benchmarks", h.CreateBenchmark)
			r.Get("/benchmarks/{id}", h.GetBenchmark)
			r.Delete("/benchmarks/{id}", h.DeleteBenchmark)
			r.Get("/projects/{id}/measures", h.ListMeasures)
			r.Post("/projects/{id}/measures", h.CreateMeasure)
			r.Get("/measures/{id}", h.GetMeasure)
			r.Delete("/measures/{id}", h.DeleteMeasure)

			// Reports (ingestion)
			r.Post("/projects/{id}/reports", h.IngestReport)
			r.With(middleware.RequireScope("create_report")).Post("/run", h.IngestReportByRef)

			// Thresholds & Alerts
			r.Get("/projects/{id}/thresholds", h.ListThresholds)
			r.Get("/projects/{id}/thresholds/lookup", h.GetThreshold)
			r.Put("/projects/{id}/thresholds", h.UpsertThreshold)
			r.Delete("/thresholds/{id}", h.DeleteThreshold)
			r.Get("/reports/{id}/alerts", h.ListAlerts)
			r.Get("/alerts/{id}", h.GetAlert)
			r.Post("/alerts/{id}/dismiss", h.DismissAlert)

			// Users (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", h.ListUsers)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})
		})
	})
}
