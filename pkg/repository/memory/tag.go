package memory

import (
	"context"
	"sync"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// TagSource is an in-memory stand-in for the notes module
type TagSource struct {
	mu   sync.RWMutex
	tags map[snapshotKey][]model.Tag
}

var _ interfaces.TagSource = &TagSource{}

// NewTagSource creates an empty TagSource
func NewTagSource() *TagSource {
	return &TagSource{
		tags: make(map[snapshotKey][]model.Tag),
	}
}

// PutTags replaces the tags of a case. A case is known once tags were put, even an empty list.
func (s *TagSource) PutTags(tenantID types.TenantID, caseID types.CaseID, tags []model.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.Tag, len(tags))
	copy(copied, tags)
	s.tags[snapshotKey{tenantID: tenantID, caseID: caseID}] = copied
}

// ListSeverityTags implements interfaces.TagSource
func (s *TagSource) ListSeverityTags(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) ([]model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags, exists := s.tags[snapshotKey{tenantID: tenantID, caseID: caseID}]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrCaseNotFound, "case not found",
			goerr.V("tenant_id", tenantID), goerr.V("case_id", caseID))
	}

	copied := make([]model.Tag, len(tags))
	copy(copied, tags)
	return copied, nil
}
