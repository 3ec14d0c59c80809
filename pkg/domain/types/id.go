package types

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const maxCaseIDLength = 128

// TenantID identifies the organization owning configurations and cases
type TenantID string

// Validate checks if the TenantID is valid
func (t TenantID) Validate() error {
	if t == "" {
		return goerr.New("tenant ID cannot be empty")
	}
	if !idPattern.MatchString(string(t)) {
		return goerr.New("tenant ID must be lowercase alphanumeric with hyphens", goerr.V("id", t))
	}
	return nil
}

// String returns the string representation of TenantID
func (t TenantID) String() string {
	return string(t)
}

// CaseID identifies a case owned by the external case management module
type CaseID string

// Validate checks if the CaseID can be used as a storage key
func (c CaseID) Validate() error {
	if c == "" {
		return goerr.New("case ID cannot be empty")
	}
	if len(c) > maxCaseIDLength {
		return goerr.New("case ID is too long", goerr.V("id", c), goerr.V("max", maxCaseIDLength))
	}
	if strings.ContainsAny(string(c), "/ \t\n") || c == "." || c == ".." {
		return goerr.New("case ID contains invalid characters", goerr.V("id", c))
	}
	return nil
}

// String returns the string representation of CaseID
func (c CaseID) String() string {
	return string(c)
}

// ConfigID identifies one stored risk matrix configuration version
type ConfigID string

// NewConfigID generates a new UUID v4 ConfigID
func NewConfigID() ConfigID {
	return ConfigID(uuid.New().String())
}

// Validate checks if the ConfigID is a UUID
func (c ConfigID) Validate() error {
	if _, err := uuid.Parse(string(c)); err != nil {
		return goerr.Wrap(err, "config ID must be a UUID", goerr.V("id", c))
	}
	return nil
}

// String returns the string representation of ConfigID
func (c ConfigID) String() string {
	return string(c)
}

// SnapshotID identifies one stored risk evaluation
type SnapshotID string

// NewSnapshotID generates a new UUID v4 SnapshotID
func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.New().String())
}

// String returns the string representation of SnapshotID
func (s SnapshotID) String() string {
	return string(s)
}
