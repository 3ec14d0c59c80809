package interfaces

import (
	"context"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
)

// MatrixConfigRepository stores versioned risk matrix configurations per tenant
type MatrixConfigRepository interface {
	// Create stores a new configuration. The stored record is always inactive.
	// Returns ErrConflict if the tenant already has the same version.
	Create(ctx context.Context, cfg *model.MatrixConfig) (*model.MatrixConfig, error)

	// Get retrieves a configuration of the tenant by ID
	Get(ctx context.Context, tenantID types.TenantID, id types.ConfigID) (*model.MatrixConfig, error)

	// GetActive returns the active configuration. Returns nil, nil if none is active.
	GetActive(ctx context.Context, tenantID types.TenantID) (*model.MatrixConfig, error)

	// Activate deactivates every other configuration of the tenant and activates id
	// in one atomic step. At most one configuration per tenant is active afterwards.
	Activate(ctx context.Context, tenantID types.TenantID, id types.ConfigID) (*model.MatrixConfig, error)

	// List returns all configurations of the tenant, newest first
	List(ctx context.Context, tenantID types.TenantID) ([]*model.MatrixConfig, error)
}

// SnapshotRepository is the append-only store of risk evaluations
type SnapshotRepository interface {
	// Create appends a snapshot. Existing snapshots are never modified.
	Create(ctx context.Context, s *model.RiskSnapshot) (*model.RiskSnapshot, error)

	// Latest returns the most recently created snapshot of a case
	Latest(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) (*model.RiskSnapshot, error)

	// History returns all snapshots of a case, oldest first
	History(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) ([]*model.RiskSnapshot, error)
}
