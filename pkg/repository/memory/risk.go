package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type matrixConfigRepository struct {
	mu      sync.RWMutex
	configs map[types.TenantID]map[types.ConfigID]*model.MatrixConfig
}

func newMatrixConfigRepository() *matrixConfigRepository {
	return &matrixConfigRepository{
		configs: make(map[types.TenantID]map[types.ConfigID]*model.MatrixConfig),
	}
}

func (r *matrixConfigRepository) ensureTenant(tenantID types.TenantID) {
	if _, exists := r.configs[tenantID]; !exists {
		r.configs[tenantID] = make(map[types.ConfigID]*model.MatrixConfig)
	}
}

func (r *matrixConfigRepository) Create(ctx context.Context, cfg *model.MatrixConfig) (*model.MatrixConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureTenant(cfg.TenantID)

	for _, existing := range r.configs[cfg.TenantID] {
		if existing.Version == cfg.Version {
			return nil, goerr.Wrap(ErrConflict, "config version already exists",
				goerr.V("tenant_id", cfg.TenantID), goerr.V("version", cfg.Version))
		}
	}

	created := cfg.Copy()
	if created.ID == "" {
		created.ID = types.NewConfigID()
	}
	created.Active = false
	created.ActivatedAt = nil
	created.CreatedAt = time.Now().UTC()

	r.configs[cfg.TenantID][created.ID] = created
	return created.Copy(), nil
}

func (r *matrixConfigRepository) Get(ctx context.Context, tenantID types.TenantID, id types.ConfigID) (*model.MatrixConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.configs[tenantID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "config not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}

	return cfg.Copy(), nil
}

func (r *matrixConfigRepository) GetActive(ctx context.Context, tenantID types.TenantID) (*model.MatrixConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cfg := range r.configs[tenantID] {
		if cfg.Active {
			return cfg.Copy(), nil
		}
	}
	return nil, nil
}

// Activate holds the write lock across deactivate-all and activate-one so that
// concurrent activations of the same tenant serialize.
func (r *matrixConfigRepository) Activate(ctx context.Context, tenantID types.TenantID, id types.ConfigID) (*model.MatrixConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant := r.configs[tenantID]
	target, exists := tenant[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "config not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}

	for _, cfg := range tenant {
		cfg.Active = false
	}

	now := time.Now().UTC()
	target.Active = true
	target.ActivatedAt = &now

	return target.Copy(), nil
}

func (r *matrixConfigRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.MatrixConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant := r.configs[tenantID]
	configs := make([]*model.MatrixConfig, 0, len(tenant))
	for _, cfg := range tenant {
		configs = append(configs, cfg.Copy())
	}

	sort.SliceStable(configs, func(i, j int) bool {
		if configs[i].CreatedAt.Equal(configs[j].CreatedAt) {
			return configs[i].Version > configs[j].Version
		}
		return configs[i].CreatedAt.After(configs[j].CreatedAt)
	})

	return configs, nil
}
