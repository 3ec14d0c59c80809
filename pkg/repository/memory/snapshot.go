package memory

import (
	"context"
	"sync"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// snapshotKey is a composite key for snapshot lists (tenantID + caseID)
type snapshotKey struct {
	tenantID types.TenantID
	caseID   types.CaseID
}

type snapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey][]*model.RiskSnapshot // append order == creation order
}

func newSnapshotRepository() *snapshotRepository {
	return &snapshotRepository{
		snapshots: make(map[snapshotKey][]*model.RiskSnapshot),
	}
}

func (r *snapshotRepository) Create(ctx context.Context, s *model.RiskSnapshot) (*model.RiskSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := s.Copy()
	if created.ID == "" {
		created.ID = types.NewSnapshotID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	key := snapshotKey{tenantID: s.TenantID, caseID: s.CaseID}
	created.Seq = int64(len(r.snapshots[key]) + 1)
	r.snapshots[key] = append(r.snapshots[key], created)
	return created.Copy(), nil
}

func (r *snapshotRepository) Latest(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) (*model.RiskSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.snapshots[snapshotKey{tenantID: tenantID, caseID: caseID}]
	if len(list) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "snapshot not found", goerr.V("tenant_id", tenantID), goerr.V("case_id", caseID))
	}

	return list[len(list)-1].Copy(), nil
}

func (r *snapshotRepository) History(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) ([]*model.RiskSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.snapshots[snapshotKey{tenantID: tenantID, caseID: caseID}]
	history := make([]*model.RiskSnapshot, 0, len(list))
	for _, s := range list {
		history = append(history, s.Copy())
	}
	return history, nil
}
