package interfaces

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by all repository backends
var (
	ErrNotFound = goerr.New("not found")
	ErrConflict = goerr.New("conflict")
)

// Repository defines the interface for data persistence
type Repository interface {
	MatrixConfig() MatrixConfigRepository
	Snapshot() SnapshotRepository

	Close() error
}
