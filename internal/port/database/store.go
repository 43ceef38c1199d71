// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/benchmark"
	"github.com/Strob0t/CodeForge/internal/domain/branch"
	"github.com/Strob0t/CodeForge/internal/domain/organization"
	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/domain/project"
	"github.com/Strob0t/CodeForge/internal/domain/report"
	"github.com/Strob0t/CodeForge/internal/domain/testbed"
	"github.com/Strob0t/CodeForge/internal/domain/threshold"
	"github.com/Strob0t/CodeForge/internal/domain/user"
)

// Store is the port interface for database operations.
type Store interface {
	// Organizations
	CreateOrganization(ctx context.Context, req organization.CreateRequest) (*organization.Organization, error)
	GetOrganization(ctx context.Context, id string) (*organization.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*organization.Organization, error)
	ListOrganizationsByUser(ctx context.Context, userID string) ([]organization.Organization, error)
	UpdateOrganization(ctx context.Context, o *organization.Organization) error
	DeleteOrganization(ctx context.Context, id string) error
	SlugExistsOrganization(ctx context.Context, slug string) (bool, error)

	// Organization membership
	AddOrganizationMember(ctx context.Context, organizationID string, req organization.AddMemberRequest) (*organization.Role, error)
	GetOrganizationRole(ctx context.Context, organizationID, userID string) (*organization.Role, error)
	ListOrganizationMembers(ctx context.Context, organizationID string) ([]organization.Role, error)
	UpdateOrganizationRole(ctx context.Context, organizationID, userID string, role permission.Role) error
	RemoveOrganizationMember(ctx context.Context, organizationID, userID string) error

	// Projects
	CreateProject(ctx context.Context, organizationID string, req project.CreateRequest) (*project.Project, error)
	GetProject(ctx context.Context, id string) (*project.Project, error)
	GetProjectBySlug(ctx context.Context, organizationID, slug string) (*project.Project, error)
	ListProjectsByOrganization(ctx context.Context, organizationID string) ([]project.Project, error)
	UpdateProject(ctx context.Context, p *project.Project) error
	DeleteProject(ctx context.Context, id string) error
	SlugExistsProject(ctx context.Context, organizationID, slug string) (bool, error)

	// Project membership
	GetProjectRole(ctx context.Context, projectID, userID string) (permission.Role, bool, error)

	// Branches / Heads / Versions
	CreateBranch(ctx context.Context, projectID string, req branch.CreateRequest) (*branch.Branch, error)
	GetBranch(ctx context.Context, id string) (*branch.Branch, error)
	// QueryBranchFromNameID resolves a branch by slug or UUID within a
	// project, on-demand-creating an empty branch when it does not exist
	// yet (spec.md §4.2 QueryBranch::from_name_id).
	QueryBranchFromNameID(ctx context.Context, projectID, nameID string) (*branch.Branch, error)
	// GetBranchByNameID resolves a branch by slug or UUID without
	// creating one, returning domain.ErrNotFound on a miss. The branch
	// engine (spec.md §4.5) uses this to decide whether a report's
	// start-point semantics apply.
	GetBranchByNameID(ctx context.Context, projectID, nameID string) (*branch.Branch, error)
	ListBranchesByProject(ctx context.Context, projectID string) ([]branch.Branch, error)
	DeleteBranch(ctx context.Context, id string) error
	SlugExistsBranch(ctx context.Context, projectID, slug string) (bool, error)

	GetActiveHead(ctx context.Context, branchID string) (*branch.Head, error)
	CreateHead(ctx context.Context, h *branch.Head) error
	ArchiveHead(ctx context.Context, id string) error
	// GetLatestHeadVersion resolves the newest version attached to a head,
	// used by the detector to seed a historical baseline window (spec.md
	// §4.2 QueryHeadVersion::get_latest_for_branch).
	GetLatestHeadVersion(ctx context.Context, headID string) (*branch.Version, error)
	CloneHeadVersions(ctx context.Context, fromHeadID, toHeadID string, maxVersions int) error

	CreateVersion(ctx context.Context, v *branch.Version) error
	GetVersionByHash(ctx context.Context, projectID, hash string) (*branch.Version, error)
	AttachHeadVersion(ctx context.Context, hv *branch.HeadVersion) error
	// HistoricalMetrics returns the metric values recorded for a
	// (head, benchmark, measure) triple in reports on the head, newest
	// version first, bounded by limit (spec.md §4.8 step 1; report
	// §4.2 metrics_data).
	HistoricalMetrics(ctx context.Context, headID, benchmarkID, measureID string, since time.Time, limit int) ([]float64, error)

	// Testbeds
	CreateTestbed(ctx context.Context, projectID string, req testbed.CreateRequest) (*testbed.Testbed, error)
	GetTestbed(ctx context.Context, id string) (*testbed.Testbed, error)
	QueryTestbedFromNameID(ctx context.Context, projectID, nameID string) (*testbed.Testbed, error)
	ListTestbedsByProject(ctx context.Context, projectID string) ([]testbed.Testbed, error)
	DeleteTestbed(ctx context.Context, id string) error
	SlugExistsTestbed(ctx context.Context, projectID, slug string) (bool, error)

	// Benchmarks
	CreateBenchmark(ctx context.Context, projectID string, req benchmark.CreateRequest) (*benchmark.Benchmark, error)
	GetBenchmark(ctx context.Context, id string) (*benchmark.Benchmark, error)
	QueryBenchmarkFromNameID(ctx context.Context, projectID, nameID string) (*benchmark.Benchmark, error)
	ListBenchmarksByProject(ctx context.Context, projectID string) ([]benchmark.Benchmark, error)
	DeleteBenchmark(ctx context.Context, id string) error
	SlugExistsBenchmark(ctx context.Context, projectID, slug string) (bool, error)

	// Measures
	CreateMeasure(ctx context.Context, projectID string, req benchmark.CreateRequest) (*benchmark.Measure, error)
	GetMeasure(ctx context.Context, id string) (*benchmark.Measure, error)
	QueryMeasureFromNameID(ctx context.Context, projectID, nameID string) (*benchmark.Measure, error)
	ListMeasuresByProject(ctx context.Context, projectID string) ([]benchmark.Measure, error)
	DeleteMeasure(ctx context.Context, id string) error
	SlugExistsMeasure(ctx context.Context, projectID, slug string) (bool, error)

	// Reports (transactional: a Report and all of its ReportBenchmarks and
	// Metrics are persisted in a single database transaction, spec.md §4.6
	// step 7, invariant "all-or-nothing"). Each ReportBenchmark carries its
	// own Metrics.
	CreateReport(ctx context.Context, r *report.Report, benchmarks []report.ReportBenchmark) error
	GetReport(ctx context.Context, id string) (*report.Report, error)
	ListReportsByProject(ctx context.Context, projectID string, limit int) ([]report.Report, error)
	DeleteReport(ctx context.Context, id string) error
	ListMetricsByReport(ctx context.Context, reportID string) ([]report.Metric, error)

	// Thresholds / Models / Boundaries / Alerts
	GetThreshold(ctx context.Context, projectID, branchID, testbedID, measureID string) (*threshold.Threshold, *threshold.Model, error)
	UpsertThreshold(ctx context.Context, projectID, branchID, testbedID, measureID string, req threshold.CreateRequest) (*threshold.Threshold, error)
	ListThresholdsByProject(ctx context.Context, projectID string) ([]threshold.Threshold, error)
	SoftDeleteThreshold(ctx context.Context, id string) error
	CloneThresholds(ctx context.Context, projectID, fromBranchID, toBranchID string) error

	CreateBoundary(ctx context.Context, b *threshold.Boundary) error
	GetBoundaryByMetric(ctx context.Context, metricID string) (*threshold.Boundary, error)

	CreateAlert(ctx context.Context, a *threshold.Alert) error
	GetAlert(ctx context.Context, id string) (*threshold.Alert, error)
	ListAlertsByReport(ctx context.Context, reportID string) ([]threshold.Alert, error)
	UpdateAlertStatus(ctx context.Context, id string, status threshold.Status) error

	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error
	DeleteUser(ctx context.Context, id string) error
	RecordLoginFailure(ctx context.Context, id string, failedAttempts int, lockedUntil time.Time) error
	RecordLoginSuccess(ctx context.Context, id string) error

	// Refresh Tokens
	CreateRefreshToken(ctx context.Context, rt *user.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*user.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, id string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID string) error
	RotateRefreshToken(ctx context.Context, oldID string, newRT *user.RefreshToken) error

	// API / Runner Keys
	CreateAPIKey(ctx context.Context, key *user.APIKey) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*user.APIKey, error)
	ListAPIKeysByUser(ctx context.Context, userID string, kind user.TokenKind) ([]user.APIKey, error)
	DeleteAPIKey(ctx context.Context, id, userID string) error

	// Token Revocation
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}
