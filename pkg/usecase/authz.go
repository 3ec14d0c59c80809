package usecase

import (
	"context"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// AllowAllAuthorizer grants every request (for development/testing)
type AllowAllAuthorizer struct{}

var _ interfaces.Authorizer = &AllowAllAuthorizer{}

func (a *AllowAllAuthorizer) RequireReadAccess(ctx context.Context, tenantID types.TenantID, scopeID string) error {
	return nil
}

func (a *AllowAllAuthorizer) RequireAdminAccess(ctx context.Context, tenantID types.TenantID) error {
	return nil
}

// RegistryAuthorizer only admits tenants listed in the tenant registry.
// Scope checks are left to the upstream access control module.
type RegistryAuthorizer struct {
	registry *model.TenantRegistry
}

var _ interfaces.Authorizer = &RegistryAuthorizer{}

// NewRegistryAuthorizer creates a RegistryAuthorizer
func NewRegistryAuthorizer(registry *model.TenantRegistry) *RegistryAuthorizer {
	return &RegistryAuthorizer{registry: registry}
}

func (a *RegistryAuthorizer) RequireReadAccess(ctx context.Context, tenantID types.TenantID, scopeID string) error {
	if !a.registry.Has(tenantID) {
		return goerr.Wrap(ErrAccessDenied, "tenant is not registered",
			goerr.V(TenantIDKey, tenantID), goerr.V("scope_id", scopeID))
	}
	return nil
}

func (a *RegistryAuthorizer) RequireAdminAccess(ctx context.Context, tenantID types.TenantID) error {
	if !a.registry.Has(tenantID) {
		return goerr.Wrap(ErrAccessDenied, "tenant is not registered", goerr.V(TenantIDKey, tenantID))
	}
	return nil
}

// checkActor validates the identity before any authorization call
func checkActor(actor model.Actor) error {
	if err := actor.TenantID.Validate(); err != nil {
		return classify(ErrValidationFailed, err, "invalid tenant id")
	}
	return nil
}
