package model

import (
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Tenant represents a tenant's identity
type Tenant struct {
	ID   types.TenantID
	Name string
}

// TenantEntry holds tenant identity and its integration settings
type TenantEntry struct {
	Tenant       Tenant
	SlackChannel string // channel for RED escalation notices, empty to disable
}

// TenantRegistry holds tenant settings loaded at startup.
// It does not hold Repository or UseCase instances (settings only).
type TenantRegistry struct {
	entries map[types.TenantID]*TenantEntry
	order   []types.TenantID // preserves registration order
}

// NewTenantRegistry creates a new empty TenantRegistry
func NewTenantRegistry() *TenantRegistry {
	return &TenantRegistry{
		entries: make(map[types.TenantID]*TenantEntry),
	}
}

// Register adds a tenant entry to the registry
func (r *TenantRegistry) Register(entry *TenantEntry) {
	if _, exists := r.entries[entry.Tenant.ID]; !exists {
		r.order = append(r.order, entry.Tenant.ID)
	}
	r.entries[entry.Tenant.ID] = entry
}

// Get retrieves a tenant entry by ID
func (r *TenantRegistry) Get(tenantID types.TenantID) (*TenantEntry, error) {
	entry, ok := r.entries[tenantID]
	if !ok {
		return nil, goerr.Wrap(ErrTenantNotFound, "tenant not found",
			goerr.V(TenantIDKey, tenantID))
	}
	return entry, nil
}

// Has reports whether the tenant is registered
func (r *TenantRegistry) Has(tenantID types.TenantID) bool {
	_, ok := r.entries[tenantID]
	return ok
}

// Tenants returns all registered tenants in registration order
func (r *TenantRegistry) Tenants() []Tenant {
	result := make([]Tenant, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id].Tenant)
	}
	return result
}
