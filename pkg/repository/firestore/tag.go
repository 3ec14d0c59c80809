package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const observationsCollection = "observations"

// observationDoc is the part of an observation written by the notes module that we read
type observationDoc struct {
	Tags []observationTagDoc `firestore:"Tags"`
}

type observationTagDoc struct {
	IndicatorID string `firestore:"IndicatorID"`
	Severity    int    `firestore:"Severity"`
	Comment     string `firestore:"Comment"`
}

// TagSource reads severity tags from observation documents:
// tenants/{tenantID}/cases/{caseID}/observations/{observationID}
type TagSource struct {
	client *firestore.Client
	root   string
}

var _ interfaces.TagSource = &TagSource{}

func newTagSource(client *firestore.Client) *TagSource {
	return &TagSource{
		client: client,
		root:   defaultTenantsCollection,
	}
}

func (s *TagSource) caseDoc(tenantID types.TenantID, caseID types.CaseID) *firestore.DocumentRef {
	return s.client.Collection(s.root).Doc(tenantID.String()).
		Collection(casesCollection).Doc(caseID.String())
}

func (s *TagSource) ListSeverityTags(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) ([]model.Tag, error) {
	caseRef := s.caseDoc(tenantID, caseID)
	if _, err := caseRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrCaseNotFound, "case not found",
				goerr.V("tenant_id", tenantID), goerr.V("case_id", caseID))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("case_id", caseID))
	}

	iter := caseRef.Collection(observationsCollection).Documents(ctx)
	defer iter.Stop()

	tags := []model.Tag{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate observations", goerr.V("case_id", caseID))
		}

		var obs observationDoc
		if err := doc.DataTo(&obs); err != nil {
			return nil, goerr.Wrap(err, "failed to decode observation", goerr.V("doc_id", doc.Ref.ID))
		}
		for _, t := range obs.Tags {
			tags = append(tags, model.Tag{
				IndicatorID: t.IndicatorID,
				Severity:    t.Severity,
				Comment:     t.Comment,
			})
		}
	}

	return tags, nil
}
