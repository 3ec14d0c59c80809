package memory

import (
	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
)

// Sentinel errors, shared with the other backends
var (
	ErrNotFound = interfaces.ErrNotFound
	ErrConflict = interfaces.ErrConflict
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	matrixConfig *matrixConfigRepository
	snapshot     *snapshotRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		matrixConfig: newMatrixConfigRepository(),
		snapshot:     newSnapshotRepository(),
	}
}

func (m *Memory) MatrixConfig() interfaces.MatrixConfigRepository {
	return m.matrixConfig
}

func (m *Memory) Snapshot() interfaces.SnapshotRepository {
	return m.snapshot
}

func (m *Memory) Close() error {
	return nil
}
