package model

import "github.com/caseguard/riskmatrix/pkg/domain/types"

// Actor is the request identity resolved by the access control module
type Actor struct {
	TenantID types.TenantID
	ScopeID  string
}
