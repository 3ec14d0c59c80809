package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidMatrix  = goerr.New("invalid risk matrix configuration")
	ErrTenantNotFound = goerr.New("tenant not found")
)

// Context keys for error values
const (
	IndicatorIDKey = "indicator_id"
	DimensionKey   = "dimension"
	VersionKey     = "version"
	TenantIDKey    = "tenant_id"
)
