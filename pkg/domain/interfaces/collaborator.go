package interfaces

import (
	"context"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ErrCaseNotFound is returned by a TagSource for a case it does not know
var ErrCaseNotFound = goerr.New("case not found")

// TagSource provides the severity tags attached to a case's observations
type TagSource interface {
	ListSeverityTags(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) ([]model.Tag, error)
}

// Authorizer is the access control gate run before every engine operation.
// Denials must wrap an error the caller can map to "access denied".
type Authorizer interface {
	RequireReadAccess(ctx context.Context, tenantID types.TenantID, scopeID string) error
	RequireAdminAccess(ctx context.Context, tenantID types.TenantID) error
}

// Notifier is informed about snapshots that need attention
type Notifier interface {
	NotifyEscalation(ctx context.Context, snapshot *model.RiskSnapshot) error
}

// MetricsRecorder receives engine measurements
type MetricsRecorder interface {
	ObserveEvaluation(light types.TrafficLight, duration time.Duration)
	IncActivation(tenantID types.TenantID)
	IncSerializationDegraded()
}
