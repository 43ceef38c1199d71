package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain"
	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
	"github.com/Strob0t/CodeForge/internal/domain/branch"
	"github.com/Strob0t/CodeForge/internal/port/cache"
	"github.com/Strob0t/CodeForge/internal/port/database"
)

// headCacheTTL bounds how long a resolved branch/head pair is trusted
// before the next report falls back to the store. Kept short since a
// Reset changes the active head and must not be served stale.
const headCacheTTL = 30 * time.Second

// BranchService implements the branch/start-point engine of spec.md
// §4.5: resolving a report's branch, creating it with inherited
// history when a start point is named, and reset semantics.
type BranchService struct {
	store database.Store
	cache cache.Cache // optional; nil disables caching
}

// NewBranchService creates a new BranchService.
func NewBranchService(store database.Store) *BranchService {
	return &BranchService{store: store}
}

// WithCache attaches an L1 cache for the branch/head lookup that
// ResolveForReport performs on every ingested report. Returns the
// same service for chaining at wiring time.
func (s *BranchService) WithCache(c cache.Cache) *BranchService {
	s.cache = c
	return s
}

func (s *BranchService) headCacheKey(projectID, branchNameID string) string {
	return "branch-head:" + projectID + ":" + branchNameID
}

func (s *BranchService) cachedHead(ctx context.Context, projectID, branchNameID string) (*branch.Branch, *branch.Head, bool) {
	if s.cache == nil {
		return nil, nil, false
	}
	raw, ok, err := s.cache.Get(ctx, s.headCacheKey(projectID, branchNameID))
	if err != nil || !ok {
		return nil, nil, false
	}
	var entry struct {
		Branch branch.Branch `json:"branch"`
		Head   branch.Head   `json:"head"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, nil, false
	}
	return &entry.Branch, &entry.Head, true
}

func (s *BranchService) cacheHead(ctx context.Context, projectID, branchNameID string, b *branch.Branch, h *branch.Head) {
	if s.cache == nil {
		return
	}
	entry := struct {
		Branch branch.Branch `json:"branch"`
		Head   branch.Head   `json:"head"`
	}{Branch: *b, Head: *h}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, s.headCacheKey(projectID, branchNameID), raw, headCacheTTL)
}

func (s *BranchService) invalidateHead(ctx context.Context, projectID, branchNameID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, s.headCacheKey(projectID, branchNameID))
}

// List returns every branch belonging to a project.
func (s *BranchService) List(ctx context.Context, projectID string) ([]branch.Branch, error) {
	return s.store.ListBranchesByProject(ctx, projectID)
}

// Get returns a single branch by id.
func (s *BranchService) Get(ctx context.Context, id string) (*branch.Branch, error) {
	return s.store.GetBranch(ctx, id)
}

// Delete removes a branch.
func (s *BranchService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteBranch(ctx, id)
}

// ResolveForReport resolves (or creates) the branch a report targets
// and returns its current Head, per spec.md §4.5 steps 1-3:
//  1. If the branch exists, use its current head.
//  2. Else, if a start point is given, create a branch whose head
//     inherits from the start point's head (cloning up to max_versions
//     historical versions, and thresholds when requested).
//  3. Else, create an empty branch.
func (s *BranchService) ResolveForReport(ctx context.Context, projectID, branchNameID string, startPoint *branch.StartPoint) (*branch.Branch, *branch.Head, error) {
	if b, head, ok := s.cachedHead(ctx, projectID, branchNameID); ok {
		return b, head, nil
	}

	b, err := s.store.GetBranchByNameID(ctx, projectID, branchNameID)
	if err == nil {
		head, headErr := s.store.GetActiveHead(ctx, b.ID)
		if headErr != nil {
			return nil, nil, fmt.Errorf("get active head for branch %s: %w", b.ID, headErr)
		}
		s.cacheHead(ctx, projectID, branchNameID, b, head)
		return b, head, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("resolve branch %s: %w", branchNameID, err)
	}

	req := branch.CreateRequest{Name: branchNameID}
	if startPoint != nil {
		if vErr := startPoint.Validate(); vErr != nil {
			return nil, nil, bcherr.BadRequest(vErr.Error())
		}
		req.StartPoint = startPoint
	}

	created, err := s.store.CreateBranch(ctx, projectID, req)
	if err != nil {
		return nil, nil, fmt.Errorf("create branch %s: %w", branchNameID, err)
	}

	head, err := s.store.GetActiveHead(ctx, created.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("get active head for new branch %s: %w", created.ID, err)
	}

	if startPoint != nil {
		if err := s.applyStartPointExtras(ctx, projectID, created.ID, startPoint); err != nil {
			return nil, nil, err
		}
	}

	return created, head, nil
}

// applyStartPointExtras handles the two parts of start-point inheritance
// that CreateBranch's simple "clone the most recent N versions" does not
// cover: pinning the clone to an exact start_hash, and cloning the start
// branch's live thresholds.
func (s *BranchService) applyStartPointExtras(ctx context.Context, projectID, newBranchID string, sp *branch.StartPoint) error {
	startBranch, err := s.store.GetBranchByNameID(ctx, projectID, sp.Branch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // nothing to inherit from a start branch that does not exist
		}
		return fmt.Errorf("resolve start point branch %s: %w", sp.Branch, err)
	}

	if sp.Hash != "" {
		v, err := s.store.GetVersionByHash(ctx, projectID, sp.Hash)
		if err == nil {
			head, err := s.store.GetActiveHead(ctx, newBranchID)
			if err == nil {
				_ = s.store.AttachHeadVersion(ctx, &branch.HeadVersion{HeadID: head.ID, VersionID: v.ID})
			}
		}
	}

	if sp.CloneThresholds {
		if err := s.store.CloneThresholds(ctx, projectID, startBranch.ID, newBranchID); err != nil {
			return fmt.Errorf("clone thresholds from start point: %w", err)
		}
	}
	return nil
}

// Reset archives a branch's current head and creates a fresh one,
// optionally seeded from a start point (spec.md §4.5 step 4).
func (s *BranchService) Reset(ctx context.Context, projectID, branchID string, req branch.ResetRequest) (*branch.Head, error) {
	current, err := s.store.GetActiveHead(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("get active head for branch %s: %w", branchID, err)
	}
	if err := s.store.ArchiveHead(ctx, current.ID); err != nil {
		return nil, fmt.Errorf("archive head %s: %w", current.ID, err)
	}
	if b, bErr := s.store.GetBranch(ctx, branchID); bErr == nil {
		s.invalidateHead(ctx, projectID, b.Name)
	}

	newHead := &branch.Head{BranchID: branchID}
	if req.StartPoint != nil {
		if err := req.StartPoint.Validate(); err != nil {
			return nil, bcherr.BadRequest(err.Error())
		}
		startBranch, err := s.store.GetBranchByNameID(ctx, projectID, req.StartPoint.Branch)
		if err == nil {
			startHead, err := s.store.GetActiveHead(ctx, startBranch.ID)
			if err == nil {
				newHead.StartHeadID = &startHead.ID
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("resolve reset start point: %w", err)
		}
	}

	if err := s.store.CreateHead(ctx, newHead); err != nil {
		return nil, fmt.Errorf("create reset head: %w", err)
	}

	if newHead.StartHeadID != nil && req.StartPoint != nil {
		if err := s.store.CloneHeadVersions(ctx, *newHead.StartHeadID, newHead.ID, req.StartPoint.ResolvedMaxVersions()); err != nil {
			return nil, fmt.Errorf("clone versions on reset: %w", err)
		}
	}

	return newHead, nil
}
