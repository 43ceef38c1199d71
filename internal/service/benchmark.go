package service

import (
	"context"
	"fmt"

	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
	"github.com/Strob0t/CodeForge/internal/domain/benchmark"
	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
	"github.com/Strob0t/CodeForge/internal/port/database"
)

// BenchmarkService manages the Benchmark and Measure resources of
// spec.md §3, both scoped to a Project with name/slug unique within it.
type BenchmarkService struct {
	store database.Store
}

// NewBenchmarkService creates a new BenchmarkService.
func NewBenchmarkService(store database.Store) *BenchmarkService {
	return &BenchmarkService{store: store}
}

// CreateBenchmark validates the request, generates a slug when none
// was supplied, and creates the Benchmark within projectID.
func (s *BenchmarkService) CreateBenchmark(ctx context.Context, projectID string, req benchmark.CreateRequest) (*benchmark.Benchmark, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}
	slug, err := s.resolveSlug(ctx, projectID, req.Name, req.Slug, s.store.SlugExistsBenchmark)
	if err != nil {
		return nil, err
	}
	req.Slug = slug

	b, err := s.store.CreateBenchmark(ctx, projectID, req)
	if err != nil {
		return nil, fmt.Errorf("create benchmark: %w", err)
	}
	return b, nil
}

// GetBenchmark returns a Benchmark by ID.
func (s *BenchmarkService) GetBenchmark(ctx context.Context, id string) (*benchmark.Benchmark, error) {
	return s.store.GetBenchmark(ctx, id)
}

// ListBenchmarks returns every Benchmark in a Project.
func (s *BenchmarkService) ListBenchmarks(ctx context.Context, projectID string) ([]benchmark.Benchmark, error) {
	return s.store.ListBenchmarksByProject(ctx, projectID)
}

// DeleteBenchmark removes a Benchmark and, by foreign-key cascade,
// every ReportBenchmark citing it.
func (s *BenchmarkService) DeleteBenchmark(ctx context.Context, id string) error {
	return s.store.DeleteBenchmark(ctx, id)
}

// CreateMeasure validates the request, generates a slug when none was
// supplied, and creates the Measure within projectID.
func (s *BenchmarkService) CreateMeasure(ctx context.Context, projectID string, req benchmark.CreateRequest) (*benchmark.Measure, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}
	slug, err := s.resolveSlug(ctx, projectID, req.Name, req.Slug, s.store.SlugExistsMeasure)
	if err != nil {
		return nil, err
	}
	req.Slug = slug

	m, err := s.store.CreateMeasure(ctx, projectID, req)
	if err != nil {
		return nil, fmt.Errorf("create measure: %w", err)
	}
	return m, nil
}

// GetMeasure returns a Measure by ID.
func (s *BenchmarkService) GetMeasure(ctx context.Context, id string) (*benchmark.Measure, error) {
	return s.store.GetMeasure(ctx, id)
}

// ListMeasures returns every Measure in a Project.
func (s *BenchmarkService) ListMeasures(ctx context.Context, projectID string) ([]benchmark.Measure, error) {
	return s.store.ListMeasuresByProject(ctx, projectID)
}

// DeleteMeasure removes a Measure.
func (s *BenchmarkService) DeleteMeasure(ctx context.Context, id string) error {
	return s.store.DeleteMeasure(ctx, id)
}

// resolveSlug returns slug unchanged when non-empty, otherwise derives
// one from name, probing the given exists predicate scoped to
// projectID.
func (s *BenchmarkService) resolveSlug(ctx context.Context, projectID, name, slug string, exists func(ctx context.Context, projectID, slug string) (bool, error)) (string, error) {
	if slug != "" {
		return slug, nil
	}
	generated, err := valueobject.GenerateSlug(name, func(candidate string) bool {
		ok, _ := exists(ctx, projectID, candidate)
		return ok
	})
	if err != nil {
		return "", bcherr.Internal("generate slug", err)
	}
	return generated.String(), nil
}
