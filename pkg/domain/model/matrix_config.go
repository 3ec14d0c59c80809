package model

import (
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// MatrixConfig is one stored, versioned risk matrix of a tenant.
// Only Active and ActivatedAt change after creation.
type MatrixConfig struct {
	ID          types.ConfigID
	TenantID    types.TenantID
	Version     string
	Active      bool
	Document    string // configuration JSON exactly as saved
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// Matrix parses the stored document into its typed form
func (c *MatrixConfig) Matrix() (*RiskMatrix, error) {
	m, err := ParseRiskMatrix([]byte(c.Document))
	if err != nil {
		return nil, goerr.Wrap(err, "stored risk matrix is invalid",
			goerr.V("config_id", c.ID), goerr.V(VersionKey, c.Version))
	}
	return m, nil
}

// Copy returns a deep copy of the record
func (c *MatrixConfig) Copy() *MatrixConfig {
	copied := *c
	if c.ActivatedAt != nil {
		at := *c.ActivatedAt
		copied.ActivatedAt = &at
	}
	return &copied
}
