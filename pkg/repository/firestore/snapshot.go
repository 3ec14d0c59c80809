package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

const (
	casesCollection     = "cases"
	snapshotsCollection = "risk_snapshots"
)

// snapshotDoc is the Firestore document representation of model.RiskSnapshot.
// The audit trail is stored as the serialized payload, not as nested arrays.
type snapshotDoc struct {
	ID                  string    `firestore:"ID"`
	TenantID            string    `firestore:"TenantID"`
	CaseID              string    `firestore:"CaseID"`
	ConfigRef           string    `firestore:"ConfigRef"`
	ConfigVersion       string    `firestore:"ConfigVersion"`
	RawScore            float64   `firestore:"RawScore"`
	ProtectiveReduction float64   `firestore:"ProtectiveReduction"`
	FinalScore          float64   `firestore:"FinalScore"`
	TrafficLight        string    `firestore:"TrafficLight"`
	Rationale           string    `firestore:"Rationale"`
	HardRuleHits        string    `firestore:"HardRuleHits"`
	DimensionsPresent   string    `firestore:"DimensionsPresent"`
	UnknownIndicators   []string  `firestore:"UnknownIndicators"`
	CreatedAt           time.Time `firestore:"CreatedAt"`
	Seq                 int64     `firestore:"Seq"`
}

func toSnapshotDoc(s *model.RiskSnapshot) *snapshotDoc {
	d := &snapshotDoc{
		ID:                  s.ID.String(),
		TenantID:            s.TenantID.String(),
		CaseID:              s.CaseID.String(),
		ConfigVersion:       s.ConfigVersion,
		RawScore:            s.RawScore,
		ProtectiveReduction: s.ProtectiveReduction,
		FinalScore:          s.FinalScore,
		TrafficLight:        s.TrafficLight.String(),
		Rationale:           s.Payload.Rationale,
		HardRuleHits:        s.Payload.HardRuleHits,
		DimensionsPresent:   s.Payload.DimensionsPresent,
		UnknownIndicators:   s.UnknownIndicators,
		CreatedAt:           s.CreatedAt,
		Seq:                 s.Seq,
	}
	if s.ConfigRef != nil {
		d.ConfigRef = s.ConfigRef.String()
	}
	return d
}

func fromSnapshotDoc(d *snapshotDoc) *model.RiskSnapshot {
	s := &model.RiskSnapshot{
		ID:                  types.SnapshotID(d.ID),
		TenantID:            types.TenantID(d.TenantID),
		CaseID:              types.CaseID(d.CaseID),
		ConfigVersion:       d.ConfigVersion,
		RawScore:            d.RawScore,
		ProtectiveReduction: d.ProtectiveReduction,
		FinalScore:          d.FinalScore,
		TrafficLight:        types.TrafficLight(d.TrafficLight),
		UnknownIndicators:   d.UnknownIndicators,
		Payload: model.SnapshotPayload{
			Rationale:         d.Rationale,
			HardRuleHits:      d.HardRuleHits,
			DimensionsPresent: d.DimensionsPresent,
		},
		CreatedAt: d.CreatedAt,
		Seq:       d.Seq,
	}
	if d.ConfigRef != "" {
		ref := types.ConfigID(d.ConfigRef)
		s.ConfigRef = &ref
	}
	s.Rationale, s.HardRuleHits, s.DimensionsPresent = s.Payload.Decode()
	return s
}

type snapshotRepository struct {
	client *firestore.Client
	root   string
}

func newSnapshotRepository(client *firestore.Client) *snapshotRepository {
	return &snapshotRepository{
		client: client,
		root:   defaultTenantsCollection,
	}
}

// snapshotsCollection returns the subcollection path:
// tenants/{tenantID}/cases/{caseID}/risk_snapshots
func (r *snapshotRepository) snapshotsCollection(tenantID types.TenantID, caseID types.CaseID) *firestore.CollectionRef {
	return r.client.Collection(r.root).Doc(tenantID.String()).
		Collection(casesCollection).Doc(caseID.String()).
		Collection(snapshotsCollection)
}

func (r *snapshotRepository) Create(ctx context.Context, s *model.RiskSnapshot) (*model.RiskSnapshot, error) {
	created := s.Copy()
	if created.ID == "" {
		created.ID = types.NewSnapshotID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	coll := r.snapshotsCollection(s.TenantID, s.CaseID)
	docRef := coll.Doc(created.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		last, err := tx.Documents(coll.OrderBy(fieldSeq, firestore.Desc).Limit(1)).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to read snapshot sequence")
		}

		created.Seq = 1
		if len(last) > 0 {
			var d snapshotDoc
			if err := last[0].DataTo(&d); err != nil {
				return goerr.Wrap(err, "failed to decode snapshot", goerr.V("doc_id", last[0].Ref.ID))
			}
			created.Seq = d.Seq + 1
		}

		return tx.Create(docRef, toSnapshotDoc(created))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create snapshot",
			goerr.V("case_id", s.CaseID), goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *snapshotRepository) Latest(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) (*model.RiskSnapshot, error) {
	iter := orderBy(r.snapshotsCollection(tenantID, caseID).Query, latestSnapshotKeys).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "snapshot not found", goerr.V("tenant_id", tenantID), goerr.V("case_id", caseID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest snapshot", goerr.V("case_id", caseID))
	}

	var d snapshotDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode snapshot", goerr.V("doc_id", doc.Ref.ID))
	}
	return fromSnapshotDoc(&d), nil
}

func (r *snapshotRepository) History(ctx context.Context, tenantID types.TenantID, caseID types.CaseID) ([]*model.RiskSnapshot, error) {
	iter := orderBy(r.snapshotsCollection(tenantID, caseID).Query, historySnapshotKeys).
		Documents(ctx)
	defer iter.Stop()

	history := []*model.RiskSnapshot{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate snapshots", goerr.V("case_id", caseID))
		}

		var d snapshotDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode snapshot", goerr.V("doc_id", doc.Ref.ID))
		}
		history = append(history, fromSnapshotDoc(&d))
	}

	return history, nil
}
