package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors, shared with the other backends
var (
	ErrNotFound = interfaces.ErrNotFound
	ErrConflict = interfaces.ErrConflict
)

const defaultTenantsCollection = "tenants"

type Firestore struct {
	client       *firestore.Client
	matrixConfig *matrixConfigRepository
	snapshot     *snapshotRepository
	tags         *TagSource
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes the root collection, e.g. for test isolation
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		root := tenantsCollection(prefix)
		f.matrixConfig.root = root
		f.snapshot.root = root
		f.tags.root = root
	}
}

func tenantsCollection(prefix string) string {
	if prefix != "" {
		return prefix + "_" + defaultTenantsCollection
	}
	return defaultTenantsCollection
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		matrixConfig: newMatrixConfigRepository(client),
		snapshot:     newSnapshotRepository(client),
		tags:         newTagSource(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) MatrixConfig() interfaces.MatrixConfigRepository {
	return f.matrixConfig
}

func (f *Firestore) Snapshot() interfaces.SnapshotRepository {
	return f.snapshot
}

// TagSource returns a reader for tags written by the notes module into the same database
func (f *Firestore) TagSource() *TagSource {
	return f.tags
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
