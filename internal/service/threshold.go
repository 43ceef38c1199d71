package service

import (
	"context"
	"fmt"

	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
	"github.com/Strob0t/CodeForge/internal/domain/threshold"
	"github.com/Strob0t/CodeForge/internal/port/database"
)

// ThresholdService manages Threshold/Model bindings (spec.md §3, §4.8)
// independently of the detector's evaluation logic in detector.go.
type ThresholdService struct {
	store database.Store
}

// NewThresholdService creates a new ThresholdService.
func NewThresholdService(store database.Store) *ThresholdService {
	return &ThresholdService{store: store}
}

// Upsert validates and binds a Model to a (branch, testbed, measure)
// triple. A prior Threshold on the same triple is soft-deleted and its
// Model snapshotted so historical Boundaries keep citing it (spec.md
// §3 Model doc comment).
func (s *ThresholdService) Upsert(ctx context.Context, projectID, branchID, testbedID, measureID string, req threshold.CreateRequest) (*threshold.Threshold, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}
	t, err := s.store.UpsertThreshold(ctx, projectID, branchID, testbedID, measureID, req)
	if err != nil {
		return nil, fmt.Errorf("upsert threshold: %w", err)
	}
	return t, nil
}

// UpsertByNameID resolves the branch/testbed/measure slugs carried on
// req (mirroring the HTTP adapter's path-free threshold endpoint,
// spec.md §6 `PUT /v0/projects/{proj}/thresholds/{t}`) to IDs before
// delegating to Upsert.
func (s *ThresholdService) UpsertByNameID(ctx context.Context, projectID string, req threshold.CreateRequest) (*threshold.Threshold, error) {
	b, err := s.store.QueryBranchFromNameID(ctx, projectID, req.BranchNameID)
	if err != nil {
		return nil, fmt.Errorf("resolve branch %s: %w", req.BranchNameID, err)
	}
	tb, err := s.store.QueryTestbedFromNameID(ctx, projectID, req.TestbedNameID)
	if err != nil {
		return nil, fmt.Errorf("resolve testbed %s: %w", req.TestbedNameID, err)
	}
	m, err := s.store.QueryMeasureFromNameID(ctx, projectID, req.MeasureNameID)
	if err != nil {
		return nil, fmt.Errorf("resolve measure %s: %w", req.MeasureNameID, err)
	}
	return s.Upsert(ctx, projectID, b.ID, tb.ID, m.ID, req)
}

// Get resolves the active Threshold and its Model for a triple.
func (s *ThresholdService) Get(ctx context.Context, projectID, branchID, testbedID, measureID string) (*threshold.Threshold, *threshold.Model, error) {
	return s.store.GetThreshold(ctx, projectID, branchID, testbedID, measureID)
}

// List returns every active Threshold in a Project.
func (s *ThresholdService) List(ctx context.Context, projectID string) ([]threshold.Threshold, error) {
	return s.store.ListThresholdsByProject(ctx, projectID)
}

// Delete soft-deletes a Threshold, leaving its historical Boundaries
// and Alerts untouched.
func (s *ThresholdService) Delete(ctx context.Context, id string) error {
	return s.store.SoftDeleteThreshold(ctx, id)
}

// DismissAlert is the only post-hoc mutation an Alert permits (spec.md
// §4.9).
func (s *ThresholdService) DismissAlert(ctx context.Context, id string) error {
	return s.store.UpdateAlertStatus(ctx, id, threshold.StatusDismissed)
}

// GetAlert returns an Alert by ID.
func (s *ThresholdService) GetAlert(ctx context.Context, id string) (*threshold.Alert, error) {
	return s.store.GetAlert(ctx, id)
}

// ListAlertsByReport returns every Alert raised by a Report.
func (s *ThresholdService) ListAlertsByReport(ctx context.Context, reportID string) ([]threshold.Alert, error) {
	return s.store.ListAlertsByReport(ctx, reportID)
}
