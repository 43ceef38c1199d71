package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain"
	"github.com/Strob0t/CodeForge/internal/domain/benchmark"
	"github.com/Strob0t/CodeForge/internal/domain/branch"
	"github.com/Strob0t/CodeForge/internal/domain/organization"
	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/domain/project"
	"github.com/Strob0t/CodeForge/internal/domain/report"
	"github.com/Strob0t/CodeForge/internal/domain/testbed"
	"github.com/Strob0t/CodeForge/internal/domain/threshold"
	"github.com/Strob0t/CodeForge/internal/domain/user"
	"github.com/Strob0t/CodeForge/internal/port/database"
)

// mockStore is an in-memory implementation of database.Store for
// service-layer tests: plain slices per aggregate, linear scans, and
// explicit *Err injection hooks so a test can force any one call to
// fail without touching the others.
type mockStore struct {
	seq int

	organizations []organization.Organization
	orgRoles      []organization.Role

	projects    []project.Project
	projectRoles map[string]permission.Role // projectID+"/"+userID

	branches []branch.Branch
	heads    []branch.Head
	versions []branch.Version
	headVers []branch.HeadVersion

	testbeds   []testbed.Testbed
	benchmarks []benchmark.Benchmark
	measures   []benchmark.Measure

	reports          []report.Report
	reportBenchmarks []report.ReportBenchmark
	metrics          []report.Metric

	thresholds []threshold.Threshold
	models     []threshold.Model
	boundaries []threshold.Boundary
	alerts     []threshold.Alert

	users         []user.User
	refreshTokens []user.RefreshToken
	apiKeys       []user.APIKey
	revoked       map[string]time.Time

	// injection hooks
	createOrgErr      error
	getThresholdErr   error
	historicalErr     error
	createReportErr   error
	createBoundaryErr error
	createAlertErr    error
}

var _ database.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		projectRoles: make(map[string]permission.Role),
		revoked:      make(map[string]time.Time),
	}
}

func (m *mockStore) nextID() string {
	m.seq++
	return "id-" + strconv.Itoa(m.seq)
}

// --- Organizations ---

func (m *mockStore) CreateOrganization(_ context.Context, req organization.CreateRequest) (*organization.Organization, error) {
	if m.createOrgErr != nil {
		return nil, m.createOrgErr
	}
	o := organization.Organization{ID: m.nextID(), UUID: m.nextID(), Name: req.Name, Slug: req.Slug, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.organizations = append(m.organizations, o)
	return &o, nil
}

func (m *mockStore) GetOrganization(_ context.Context, id string) (*organization.Organization, error) {
	for i := range m.organizations {
		if m.organizations[i].ID == id {
			return &m.organizations[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetOrganizationBySlug(_ context.Context, slug string) (*organization.Organization, error) {
	for i := range m.organizations {
		if m.organizations[i].Slug == slug {
			return &m.organizations[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListOrganizationsByUser(_ context.Context, userID string) ([]organization.Organization, error) {
	var out []organization.Organization
	for _, r := range m.orgRoles {
		if r.UserID != userID {
			continue
		}
		for _, o := range m.organizations {
			if o.ID == r.OrganizationID {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (m *mockStore) UpdateOrganization(_ context.Context, o *organization.Organization) error {
	for i := range m.organizations {
		if m.organizations[i].ID == o.ID {
			m.organizations[i] = *o
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteOrganization(_ context.Context, id string) error {
	for i := range m.organizations {
		if m.organizations[i].ID == id {
			m.organizations = append(m.organizations[:i], m.organizations[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SlugExistsOrganization(_ context.Context, slug string) (bool, error) {
	for _, o := range m.organizations {
		if o.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) AddOrganizationMember(_ context.Context, organizationID string, req organization.AddMemberRequest) (*organization.Role, error) {
	r := organization.Role{ID: m.nextID(), OrganizationID: organizationID, UserID: req.UserID, Role: req.Role, CreatedAt: time.Now()}
	m.orgRoles = append(m.orgRoles, r)
	return &r, nil
}

func (m *mockStore) GetOrganizationRole(_ context.Context, organizationID, userID string) (*organization.Role, error) {
	for i := range m.orgRoles {
		if m.orgRoles[i].OrganizationID == organizationID && m.orgRoles[i].UserID == userID {
			return &m.orgRoles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListOrganizationMembers(_ context.Context, organizationID string) ([]organization.Role, error) {
	var out []organization.Role
	for _, r := range m.orgRoles {
		if r.OrganizationID == organizationID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateOrganizationRole(_ context.Context, organizationID, userID string, role permission.Role) error {
	for i := range m.orgRoles {
		if m.orgRoles[i].OrganizationID == organizationID && m.orgRoles[i].UserID == userID {
			m.orgRoles[i].Role = role
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) RemoveOrganizationMember(_ context.Context, organizationID, userID string) error {
	for i := range m.orgRoles {
		if m.orgRoles[i].OrganizationID == organizationID && m.orgRoles[i].UserID == userID {
			m.orgRoles = append(m.orgRoles[:i], m.orgRoles[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Projects ---

func (m *mockStore) CreateProject(_ context.Context, organizationID string, req project.CreateRequest) (*project.Project, error) {
	p := project.Project{ID: m.nextID(), UUID: m.nextID(), OrganizationID: organizationID, Name: req.Name, Slug: req.Slug, Visibility: req.Visibility, URL: req.URL, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.projects = append(m.projects, p)
	return &p, nil
}

func (m *mockStore) GetProject(_ context.Context, id string) (*project.Project, error) {
	for i := range m.projects {
		if m.projects[i].ID == id {
			return &m.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetProjectBySlug(_ context.Context, organizationID, slug string) (*project.Project, error) {
	for i := range m.projects {
		if m.projects[i].OrganizationID == organizationID && m.projects[i].Slug == slug {
			return &m.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListProjectsByOrganization(_ context.Context, organizationID string) ([]project.Project, error) {
	var out []project.Project
	for _, p := range m.projects {
		if p.OrganizationID == organizationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateProject(_ context.Context, p *project.Project) error {
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projects[i] = *p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteProject(_ context.Context, id string) error {
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SlugExistsProject(_ context.Context, organizationID, slug string) (bool, error) {
	for _, p := range m.projects {
		if p.OrganizationID == organizationID && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) GetProjectRole(_ context.Context, projectID, userID string) (permission.Role, bool, error) {
	if r, ok := m.projectRoles[projectID+"/"+userID]; ok {
		return r, true, nil
	}
	var proj *project.Project
	for i := range m.projects {
		if m.projects[i].ID == projectID {
			proj = &m.projects[i]
			break
		}
	}
	if proj == nil {
		return "", false, domain.ErrNotFound
	}
	for _, r := range m.orgRoles {
		if r.OrganizationID == proj.OrganizationID && r.UserID == userID {
			return r.Role, true, nil
		}
	}
	return "", false, nil
}

// --- Branches / Heads / Versions ---

func (m *mockStore) CreateBranch(_ context.Context, projectID string, req branch.CreateRequest) (*branch.Branch, error) {
	b := branch.Branch{ID: m.nextID(), UUID: m.nextID(), ProjectID: projectID, Name: req.Name, Slug: req.Name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.branches = append(m.branches, b)

	h := branch.Head{ID: m.nextID(), UUID: m.nextID(), BranchID: b.ID, CreatedAt: time.Now()}
	if req.StartPoint != nil {
		if start, err := m.GetBranchByNameID(context.Background(), projectID, req.StartPoint.Branch); err == nil {
			if sh, err := m.GetActiveHead(context.Background(), start.ID); err == nil {
				h.StartHeadID = &sh.ID
			}
		}
	}
	m.heads = append(m.heads, h)
	if h.StartHeadID != nil && req.StartPoint != nil {
		_ = m.CloneHeadVersions(context.Background(), *h.StartHeadID, h.ID, req.StartPoint.ResolvedMaxVersions())
	}
	return &b, nil
}

func (m *mockStore) GetBranch(_ context.Context, id string) (*branch.Branch, error) {
	for i := range m.branches {
		if m.branches[i].ID == id {
			return &m.branches[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) QueryBranchFromNameID(ctx context.Context, projectID, nameID string) (*branch.Branch, error) {
	if b, err := m.GetBranchByNameID(ctx, projectID, nameID); err == nil {
		return b, nil
	}
	return m.CreateBranch(ctx, projectID, branch.CreateRequest{Name: nameID})
}

func (m *mockStore) GetBranchByNameID(_ context.Context, projectID, nameID string) (*branch.Branch, error) {
	for i := range m.branches {
		if m.branches[i].ProjectID == projectID && (m.branches[i].Slug == nameID || m.branches[i].ID == nameID) {
			return &m.branches[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListBranchesByProject(_ context.Context, projectID string) ([]branch.Branch, error) {
	var out []branch.Branch
	for _, b := range m.branches {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteBranch(_ context.Context, id string) error {
	for i := range m.branches {
		if m.branches[i].ID == id {
			m.branches = append(m.branches[:i], m.branches[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SlugExistsBranch(_ context.Context, projectID, slug string) (bool, error) {
	for _, b := range m.branches {
		if b.ProjectID == projectID && b.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) GetActiveHead(_ context.Context, branchID string) (*branch.Head, error) {
	for i := range m.heads {
		if m.heads[i].BranchID == branchID && m.heads[i].ArchivedAt == nil {
			return &m.heads[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateHead(_ context.Context, h *branch.Head) error {
	h.ID = m.nextID()
	h.UUID = m.nextID()
	h.CreatedAt = time.Now()
	m.heads = append(m.heads, *h)
	return nil
}

func (m *mockStore) ArchiveHead(_ context.Context, id string) error {
	now := time.Now()
	for i := range m.heads {
		if m.heads[i].ID == id {
			m.heads[i].ArchivedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) GetLatestHeadVersion(_ context.Context, headID string) (*branch.Version, error) {
	var latest *branch.Version
	for _, hv := range m.headVers {
		if hv.HeadID != headID {
			continue
		}
		for i := range m.versions {
			if m.versions[i].ID == hv.VersionID {
				if latest == nil || m.versions[i].Number > latest.Number {
					latest = &m.versions[i]
				}
			}
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (m *mockStore) CloneHeadVersions(_ context.Context, fromHeadID, toHeadID string, maxVersions int) error {
	type vn struct {
		id  string
		num int64
	}
	var vs []vn
	for _, hv := range m.headVers {
		if hv.HeadID != fromHeadID {
			continue
		}
		for _, v := range m.versions {
			if v.ID == hv.VersionID {
				vs = append(vs, vn{v.ID, v.Number})
			}
		}
	}
	for i := 0; i < len(vs); i++ {
		for j := i + 1; j < len(vs); j++ {
			if vs[j].num > vs[i].num {
				vs[i], vs[j] = vs[j], vs[i]
			}
		}
	}
	if len(vs) > maxVersions {
		vs = vs[:maxVersions]
	}
	for _, v := range vs {
		m.headVers = append(m.headVers, branch.HeadVersion{ID: m.nextID(), HeadID: toHeadID, VersionID: v.id, CreatedAt: time.Now()})
	}
	return nil
}

func (m *mockStore) CreateVersion(_ context.Context, v *branch.Version) error {
	var max int64
	for _, existing := range m.versions {
		if existing.ProjectID == v.ProjectID && existing.Number > max {
			max = existing.Number
		}
	}
	v.ID = m.nextID()
	v.UUID = m.nextID()
	v.Number = max + 1
	v.CreatedAt = time.Now()
	m.versions = append(m.versions, *v)
	return nil
}

func (m *mockStore) GetVersionByHash(_ context.Context, projectID, hash string) (*branch.Version, error) {
	for i := range m.versions {
		if m.versions[i].ProjectID == projectID && m.versions[i].Hash == hash {
			return &m.versions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) AttachHeadVersion(_ context.Context, hv *branch.HeadVersion) error {
	hv.ID = m.nextID()
	hv.CreatedAt = time.Now()
	m.headVers = append(m.headVers, *hv)
	return nil
}

func (m *mockStore) HistoricalMetrics(_ context.Context, headID, benchmarkID, measureID string, since time.Time, limit int) ([]float64, error) {
	if m.historicalErr != nil {
		return nil, m.historicalErr
	}
	var out []float64
	for _, rb := range m.reportBenchmarks {
		if benchmarkID != "" && rb.BenchmarkID != benchmarkID {
			continue
		}
		for _, mt := range m.metrics {
			if mt.ReportBenchmarkID != rb.ID || mt.MeasureID != measureID {
				continue
			}
			if !since.IsZero() && mt.CreatedAt.Before(since) {
				continue
			}
			out = append(out, mt.Value)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Testbeds ---

func (m *mockStore) CreateTestbed(_ context.Context, projectID string, req testbed.CreateRequest) (*testbed.Testbed, error) {
	t := testbed.Testbed{ID: m.nextID(), UUID: m.nextID(), ProjectID: projectID, Name: req.Name, Slug: req.Slug, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.testbeds = append(m.testbeds, t)
	return &t, nil
}

func (m *mockStore) GetTestbed(_ context.Context, id string) (*testbed.Testbed, error) {
	for i := range m.testbeds {
		if m.testbeds[i].ID == id {
			return &m.testbeds[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) QueryTestbedFromNameID(ctx context.Context, projectID, nameID string) (*testbed.Testbed, error) {
	for i := range m.testbeds {
		if m.testbeds[i].ProjectID == projectID && (m.testbeds[i].Slug == nameID || m.testbeds[i].ID == nameID) {
			return &m.testbeds[i], nil
		}
	}
	return m.CreateTestbed(ctx, projectID, testbed.CreateRequest{Name: nameID, Slug: nameID})
}

func (m *mockStore) ListTestbedsByProject(_ context.Context, projectID string) ([]testbed.Testbed, error) {
	var out []testbed.Testbed
	for _, t := range m.testbeds {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteTestbed(_ context.Context, id string) error {
	for i := range m.testbeds {
		if m.testbeds[i].ID == id {
			m.testbeds = append(m.testbeds[:i], m.testbeds[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SlugExistsTestbed(_ context.Context, projectID, slug string) (bool, error) {
	for _, t := range m.testbeds {
		if t.ProjectID == projectID && t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// --- Benchmarks ---

func (m *mockStore) CreateBenchmark(_ context.Context, projectID string, req benchmark.CreateRequest) (*benchmark.Benchmark, error) {
	b := benchmark.Benchmark{ID: m.nextID(), UUID: m.nextID(), ProjectID: projectID, Name: req.Name, Slug: req.Slug, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.benchmarks = append(m.benchmarks, b)
	return &b, nil
}

func (m *mockStore) GetBenchmark(_ context.Context, id string) (*benchmark.Benchmark, error) {
	for i := range m.benchmarks {
		if m.benchmarks[i].ID == id {
			return &m.benchmarks[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) QueryBenchmarkFromNameID(ctx context.Context, projectID, nameID string) (*benchmark.Benchmark, error) {
	for i := range m.benchmarks {
		if m.benchmarks[i].ProjectID == projectID && (m.benchmarks[i].Slug == nameID || m.benchmarks[i].Name == nameID || m.benchmarks[i].ID == nameID) {
			return &m.benchmarks[i], nil
		}
	}
	return m.CreateBenchmark(ctx, projectID, benchmark.CreateRequest{Name: nameID, Slug: nameID})
}

func (m *mockStore) ListBenchmarksByProject(_ context.Context, projectID string) ([]benchmark.Benchmark, error) {
	var out []benchmark.Benchmark
	for _, b := range m.benchmarks {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteBenchmark(_ context.Context, id string) error {
	for i := range m.benchmarks {
		if m.benchmarks[i].ID == id {
			m.benchmarks = append(m.benchmarks[:i], m.benchmarks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SlugExistsBenchmark(_ context.Context, projectID, slug string) (bool, error) {
	for _, b := range m.benchmarks {
		if b.ProjectID == projectID && b.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// --- Measures ---

func (m *mockStore) CreateMeasure(_ context.Context, projectID string, req benchmark.CreateRequest) (*benchmark.Measure, error) {
	me := benchmark.Measure{ID: m.nextID(), UUID: m.nextID(), ProjectID: projectID, Name: req.Name, Slug: req.Slug, Units: req.Units, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.measures = append(m.measures, me)
	return &me, nil
}

func (m *mockStore) GetMeasure(_ context.Context, id string) (*benchmark.Measure, error) {
	for i := range m.measures {
		if m.measures[i].ID == id {
			return &m.measures[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) QueryMeasureFromNameID(ctx context.Context, projectID, nameID string) (*benchmark.Measure, error) {
	for i := range m.measures {
		if m.measures[i].ProjectID == projectID && (m.measures[i].Slug == nameID || m.measures[i].Name == nameID || m.measures[i].ID == nameID) {
			return &m.measures[i], nil
		}
	}
	return m.CreateMeasure(ctx, projectID, benchmark.CreateRequest{Name: nameID, Slug: nameID})
}

func (m *mockStore) ListMeasuresByProject(_ context.Context, projectID string) ([]benchmark.Measure, error) {
	var out []benchmark.Measure
	for _, me := range m.measures {
		if me.ProjectID == projectID {
			out = append(out, me)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteMeasure(_ context.Context, id string) error {
	for i := range m.measures {
		if m.measures[i].ID == id {
			m.measures = append(m.measures[:i], m.measures[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) SlugExistsMeasure(_ context.Context, projectID, slug string) (bool, error) {
	for _, me := range m.measures {
		if me.ProjectID == projectID && me.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// --- Reports ---

func (m *mockStore) CreateReport(_ context.Context, r *report.Report, benchmarks []report.ReportBenchmark) error {
	if m.createReportErr != nil {
		return m.createReportErr
	}
	r.ID = m.nextID()
	r.UUID = m.nextID()
	r.CreatedAt = time.Now()
	m.reports = append(m.reports, *r)

	for i := range benchmarks {
		rb := &benchmarks[i]
		rb.ID = m.nextID()
		rb.ReportID = r.ID
		m.reportBenchmarks = append(m.reportBenchmarks, *rb)

		for j := range rb.Metrics {
			mt := &rb.Metrics[j]
			mt.ID = m.nextID()
			mt.UUID = m.nextID()
			mt.ReportBenchmarkID = rb.ID
			mt.CreatedAt = r.CreatedAt
			m.metrics = append(m.metrics, *mt)
		}
	}
	return nil
}

func (m *mockStore) GetReport(_ context.Context, id string) (*report.Report, error) {
	for i := range m.reports {
		if m.reports[i].ID == id {
			return &m.reports[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListReportsByProject(_ context.Context, projectID string, limit int) ([]report.Report, error) {
	var out []report.Report
	for _, r := range m.reports {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockStore) DeleteReport(_ context.Context, id string) error {
	for i := range m.reports {
		if m.reports[i].ID == id {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) ListMetricsByReport(_ context.Context, reportID string) ([]report.Metric, error) {
	var rbIDs = map[string]bool{}
	for _, rb := range m.reportBenchmarks {
		if rb.ReportID == reportID {
			rbIDs[rb.ID] = true
		}
	}
	var out []report.Metric
	for _, mt := range m.metrics {
		if rbIDs[mt.ReportBenchmarkID] {
			out = append(out, mt)
		}
	}
	return out, nil
}

// --- Thresholds / Models / Boundaries / Alerts ---

func (m *mockStore) GetThreshold(_ context.Context, projectID, branchID, testbedID, measureID string) (*threshold.Threshold, *threshold.Model, error) {
	if m.getThresholdErr != nil {
		return nil, nil, m.getThresholdErr
	}
	for i := range m.thresholds {
		t := &m.thresholds[i]
		if t.ProjectID == projectID && t.BranchID == branchID && t.TestbedID == testbedID && t.MeasureID == measureID && !t.IsDeleted() {
			for j := range m.models {
				if m.models[j].ID == t.ModelID {
					return t, &m.models[j], nil
				}
			}
		}
	}
	return nil, nil, domain.ErrNotFound
}

func (m *mockStore) UpsertThreshold(_ context.Context, projectID, branchID, testbedID, measureID string, req threshold.CreateRequest) (*threshold.Threshold, error) {
	for i := range m.thresholds {
		t := &m.thresholds[i]
		if t.ProjectID == projectID && t.BranchID == branchID && t.TestbedID == testbedID && t.MeasureID == measureID && !t.IsDeleted() {
			now := time.Now()
			t.DeletedAt = &now
			break
		}
	}
	model := threshold.Model{
		ID: m.nextID(), UUID: m.nextID(), Test: req.Test,
		LowerBoundary: req.LowerBoundary, UpperBoundary: req.UpperBoundary,
		Percentage: req.Percentage, ZScore: req.ZScore, TValue: req.TValue,
		LogNormalQuantile: req.LogNormalQuantile, IqrMultiplier: req.IqrMultiplier,
		MinSampleSize: req.MinSampleSize, MaxSampleSize: req.MaxSampleSize, WindowSeconds: req.WindowSeconds,
		CreatedAt: time.Now(),
	}
	m.models = append(m.models, model)

	t := threshold.Threshold{
		ID: m.nextID(), UUID: m.nextID(), ProjectID: projectID, BranchID: branchID,
		TestbedID: testbedID, MeasureID: measureID, ModelID: model.ID,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.thresholds = append(m.thresholds, t)
	return &t, nil
}

func (m *mockStore) ListThresholdsByProject(_ context.Context, projectID string) ([]threshold.Threshold, error) {
	var out []threshold.Threshold
	for _, t := range m.thresholds {
		if t.ProjectID == projectID && !t.IsDeleted() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) SoftDeleteThreshold(_ context.Context, id string) error {
	now := time.Now()
	for i := range m.thresholds {
		if m.thresholds[i].ID == id {
			m.thresholds[i].DeletedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) CloneThresholds(_ context.Context, projectID, fromBranchID, toBranchID string) error {
	for _, t := range m.thresholds {
		if t.BranchID != fromBranchID || t.IsDeleted() {
			continue
		}
		var srcModel *threshold.Model
		for j := range m.models {
			if m.models[j].ID == t.ModelID {
				srcModel = &m.models[j]
			}
		}
		if srcModel == nil {
			continue
		}
		clone := *srcModel
		clone.ID = m.nextID()
		clone.UUID = m.nextID()
		m.models = append(m.models, clone)

		m.thresholds = append(m.thresholds, threshold.Threshold{
			ID: m.nextID(), UUID: m.nextID(), ProjectID: projectID, BranchID: toBranchID,
			TestbedID: t.TestbedID, MeasureID: t.MeasureID, ModelID: clone.ID,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
	}
	return nil
}

func (m *mockStore) CreateBoundary(_ context.Context, b *threshold.Boundary) error {
	if m.createBoundaryErr != nil {
		return m.createBoundaryErr
	}
	b.ID = m.nextID()
	b.UUID = m.nextID()
	b.CreatedAt = time.Now()
	m.boundaries = append(m.boundaries, *b)
	return nil
}

func (m *mockStore) GetBoundaryByMetric(_ context.Context, metricID string) (*threshold.Boundary, error) {
	for i := range m.boundaries {
		if m.boundaries[i].MetricID == metricID {
			return &m.boundaries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateAlert(_ context.Context, a *threshold.Alert) error {
	if m.createAlertErr != nil {
		return m.createAlertErr
	}
	a.ID = m.nextID()
	a.UUID = m.nextID()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *mockStore) GetAlert(_ context.Context, id string) (*threshold.Alert, error) {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			return &m.alerts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListAlertsByReport(_ context.Context, reportID string) ([]threshold.Alert, error) {
	var out []threshold.Alert
	for _, a := range m.alerts {
		if a.ReportID == reportID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateAlertStatus(_ context.Context, id string, status threshold.Status) error {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].Status = status
			m.alerts[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Users ---

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	u.ID = m.nextID()
	u.UUID = m.nextID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.users = append(m.users, *u)
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	return append([]user.User(nil), m.users...), nil
}

func (m *mockStore) UpdateUser(_ context.Context, u *user.User) error {
	for i := range m.users {
		if m.users[i].ID == u.ID {
			u.UpdatedAt = time.Now()
			m.users[i] = *u
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteUser(_ context.Context, id string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) RecordLoginFailure(_ context.Context, id string, failedAttempts int, lockedUntil time.Time) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].FailedAttempts = failedAttempts
			m.users[i].LockedUntil = lockedUntil
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) RecordLoginSuccess(_ context.Context, id string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].FailedAttempts = 0
			m.users[i].LockedUntil = time.Time{}
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Refresh Tokens ---

func (m *mockStore) CreateRefreshToken(_ context.Context, rt *user.RefreshToken) error {
	rt.ID = m.nextID()
	rt.CreatedAt = time.Now()
	m.refreshTokens = append(m.refreshTokens, *rt)
	return nil
}

func (m *mockStore) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*user.RefreshToken, error) {
	for i := range m.refreshTokens {
		if m.refreshTokens[i].TokenHash == tokenHash {
			return &m.refreshTokens[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteRefreshToken(_ context.Context, id string) error {
	for i := range m.refreshTokens {
		if m.refreshTokens[i].ID == id {
			m.refreshTokens = append(m.refreshTokens[:i], m.refreshTokens[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteRefreshTokensByUser(_ context.Context, userID string) error {
	out := m.refreshTokens[:0]
	for _, rt := range m.refreshTokens {
		if rt.UserID != userID {
			out = append(out, rt)
		}
	}
	m.refreshTokens = out
	return nil
}

func (m *mockStore) RotateRefreshToken(_ context.Context, oldID string, newRT *user.RefreshToken) error {
	found := false
	for i := range m.refreshTokens {
		if m.refreshTokens[i].ID == oldID {
			m.refreshTokens = append(m.refreshTokens[:i], m.refreshTokens[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	newRT.ID = m.nextID()
	newRT.CreatedAt = time.Now()
	m.refreshTokens = append(m.refreshTokens, *newRT)
	return nil
}

// --- API / Runner Keys ---

func (m *mockStore) CreateAPIKey(_ context.Context, key *user.APIKey) error {
	key.ID = m.nextID()
	key.CreatedAt = time.Now()
	m.apiKeys = append(m.apiKeys, *key)
	return nil
}

func (m *mockStore) GetAPIKeyByHash(_ context.Context, keyHash string) (*user.APIKey, error) {
	for i := range m.apiKeys {
		if m.apiKeys[i].KeyHash == keyHash {
			return &m.apiKeys[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListAPIKeysByUser(_ context.Context, userID string, kind user.TokenKind) ([]user.APIKey, error) {
	var out []user.APIKey
	for _, k := range m.apiKeys {
		if k.UserID == userID && k.Kind == kind {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteAPIKey(_ context.Context, id, userID string) error {
	for i := range m.apiKeys {
		if m.apiKeys[i].ID == id && m.apiKeys[i].UserID == userID {
			m.apiKeys = append(m.apiKeys[:i], m.apiKeys[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Token Revocation ---

func (m *mockStore) RevokeToken(_ context.Context, jti string, expiresAt time.Time) error {
	m.revoked[jti] = expiresAt
	return nil
}

func (m *mockStore) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

func (m *mockStore) PurgeExpiredTokens(_ context.Context) (int64, error) {
	now := time.Now()
	var n int64
	for jti, exp := range m.revoked {
		if exp.Before(now) {
			delete(m.revoked, jti)
			n++
		}
	}
	return n, nil
}
