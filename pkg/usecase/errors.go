package usecase

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for use case layer
var (
	// ErrValidationFailed covers bad input: malformed matrix JSON, invalid ids, duplicate versions
	ErrValidationFailed = errors.New("validation failed")

	// ErrNotFound covers unknown cases, configs and snapshots
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied is returned by authorizers
	ErrAccessDenied = errors.New("access denied")
)

// Context keys for error values
const (
	TenantIDKey = "tenant_id"
	CaseIDKey   = "case_id"
	ConfigIDKey = "config_id"
	VersionKey  = "version"
)

// classify attaches a use case error kind to a lower layer error while keeping the cause in the chain.
// The message stays on one line: "msg: kind: cause".
func classify(kind, cause error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(fmt.Errorf("%w: %w", kind, cause), msg, opts...)
}
