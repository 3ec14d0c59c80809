package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	configsCollection = "risk_matrix_configs"

	// activeConfigField on the tenant document points at the active config.
	// Every activation reads and writes it, so concurrent activations of one
	// tenant conflict and Firestore retries them one after another.
	activeConfigField = "ActiveConfigID"
)

// matrixConfigDoc is the Firestore document representation of model.MatrixConfig
type matrixConfigDoc struct {
	ID          string     `firestore:"ID"`
	TenantID    string     `firestore:"TenantID"`
	Version     string     `firestore:"Version"`
	Active      bool       `firestore:"Active"`
	Document    string     `firestore:"Document"`
	CreatedAt   time.Time  `firestore:"CreatedAt"`
	ActivatedAt *time.Time `firestore:"ActivatedAt"`
}

func toMatrixConfigDoc(c *model.MatrixConfig) *matrixConfigDoc {
	return &matrixConfigDoc{
		ID:          c.ID.String(),
		TenantID:    c.TenantID.String(),
		Version:     c.Version,
		Active:      c.Active,
		Document:    c.Document,
		CreatedAt:   c.CreatedAt,
		ActivatedAt: c.ActivatedAt,
	}
}

func fromMatrixConfigDoc(d *matrixConfigDoc) *model.MatrixConfig {
	return &model.MatrixConfig{
		ID:          types.ConfigID(d.ID),
		TenantID:    types.TenantID(d.TenantID),
		Version:     d.Version,
		Active:      d.Active,
		Document:    d.Document,
		CreatedAt:   d.CreatedAt,
		ActivatedAt: d.ActivatedAt,
	}
}

type matrixConfigRepository struct {
	client *firestore.Client
	root   string
}

func newMatrixConfigRepository(client *firestore.Client) *matrixConfigRepository {
	return &matrixConfigRepository{
		client: client,
		root:   defaultTenantsCollection,
	}
}

func (r *matrixConfigRepository) tenantDoc(tenantID types.TenantID) *firestore.DocumentRef {
	return r.client.Collection(r.root).Doc(tenantID.String())
}

// configsCollection returns the subcollection path:
// tenants/{tenantID}/risk_matrix_configs
func (r *matrixConfigRepository) configsCollection(tenantID types.TenantID) *firestore.CollectionRef {
	return r.tenantDoc(tenantID).Collection(configsCollection)
}

func (r *matrixConfigRepository) Create(ctx context.Context, cfg *model.MatrixConfig) (*model.MatrixConfig, error) {
	created := cfg.Copy()
	if created.ID == "" {
		created.ID = types.NewConfigID()
	}
	created.Active = false
	created.ActivatedAt = nil
	created.CreatedAt = time.Now().UTC()

	coll := r.configsCollection(cfg.TenantID)
	docRef := coll.Doc(created.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		dups, err := tx.Documents(coll.Where("Version", "==", cfg.Version).Limit(1)).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to check config version")
		}
		if len(dups) > 0 {
			return goerr.Wrap(ErrConflict, "config version already exists",
				goerr.V("tenant_id", cfg.TenantID), goerr.V("version", cfg.Version))
		}
		return tx.Create(docRef, toMatrixConfigDoc(created))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create config", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *matrixConfigRepository) Get(ctx context.Context, tenantID types.TenantID, id types.ConfigID) (*model.MatrixConfig, error) {
	doc, err := r.configsCollection(tenantID).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "config not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get config", goerr.V("id", id))
	}

	var d matrixConfigDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode config", goerr.V("id", id))
	}
	return fromMatrixConfigDoc(&d), nil
}

func (r *matrixConfigRepository) GetActive(ctx context.Context, tenantID types.TenantID) (*model.MatrixConfig, error) {
	// the equality field of activeConfigKeys is the filter, the rest is the sort
	q := r.configsCollection(tenantID).Where(fieldActive, "==", true)
	iter := orderBy(q, activeConfigKeys[1:]).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query active config", goerr.V("tenant_id", tenantID))
	}

	var d matrixConfigDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode config", goerr.V("doc_id", doc.Ref.ID))
	}
	return fromMatrixConfigDoc(&d), nil
}

func (r *matrixConfigRepository) Activate(ctx context.Context, tenantID types.TenantID, id types.ConfigID) (*model.MatrixConfig, error) {
	tenantRef := r.tenantDoc(tenantID)
	coll := r.configsCollection(tenantID)
	targetRef := coll.Doc(id.String())

	var activated *model.MatrixConfig
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// All reads must happen before any write in a Firestore transaction.
		if _, err := tx.Get(tenantRef); err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to lock tenant")
		}

		targetSnap, err := tx.Get(targetRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "config not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get config", goerr.V("id", id))
		}

		actives, err := tx.Documents(coll.Where(fieldActive, "==", true)).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query active configs")
		}

		for _, snap := range actives {
			if snap.Ref.ID == targetRef.ID {
				continue
			}
			if err := tx.Update(snap.Ref, []firestore.Update{{Path: "Active", Value: false}}); err != nil {
				return goerr.Wrap(err, "failed to deactivate config", goerr.V("id", snap.Ref.ID))
			}
		}

		var d matrixConfigDoc
		if err := targetSnap.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to decode config", goerr.V("id", id))
		}
		now := time.Now().UTC()
		d.Active = true
		d.ActivatedAt = &now

		if err := tx.Set(targetRef, &d); err != nil {
			return goerr.Wrap(err, "failed to activate config", goerr.V("id", id))
		}
		if err := tx.Set(tenantRef, map[string]interface{}{
			activeConfigField: id.String(),
		}, firestore.MergeAll); err != nil {
			return goerr.Wrap(err, "failed to update tenant active config", goerr.V("id", id))
		}

		activated = fromMatrixConfigDoc(&d)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to activate config", goerr.V("tenant_id", tenantID))
	}

	return activated, nil
}

func (r *matrixConfigRepository) List(ctx context.Context, tenantID types.TenantID) ([]*model.MatrixConfig, error) {
	iter := r.configsCollection(tenantID).OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	configs := []*model.MatrixConfig{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate configs")
		}

		var d matrixConfigDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode config", goerr.V("doc_id", doc.Ref.ID))
		}
		configs = append(configs, fromMatrixConfigDoc(&d))
	}

	return configs, nil
}
