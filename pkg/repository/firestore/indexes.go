package firestore

import (
	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/fireconf"
)

// Field paths used by ordered queries
const (
	fieldActive      = "Active"
	fieldActivatedAt = "ActivatedAt"
	fieldCreatedAt   = "CreatedAt"
	fieldSeq         = "Seq"
)

// orderKey is one field of a query's filter/sort shape. Equality filters come first,
// sort keys after them, in the order the query applies them.
type orderKey struct {
	path string
	dir  firestore.Direction
}

// Query shapes that need a composite index. The queries below and Indexes are built from these.
var (
	// GetActive: Active == true, newest activation first
	activeConfigKeys = []orderKey{
		{path: fieldActive, dir: firestore.Asc},
		{path: fieldActivatedAt, dir: firestore.Desc},
	}

	// Latest: newest snapshot, insertion order breaks timestamp ties
	latestSnapshotKeys = []orderKey{
		{path: fieldCreatedAt, dir: firestore.Desc},
		{path: fieldSeq, dir: firestore.Desc},
	}

	// History: oldest snapshot first
	historySnapshotKeys = []orderKey{
		{path: fieldCreatedAt, dir: firestore.Asc},
		{path: fieldSeq, dir: firestore.Asc},
	}
)

func orderBy(q firestore.Query, keys []orderKey) firestore.Query {
	for _, k := range keys {
		q = q.OrderBy(k.path, k.dir)
	}
	return q
}

func indexOf(keys []orderKey) fireconf.Index {
	fields := make([]fireconf.IndexField, 0, len(keys))
	for _, k := range keys {
		order := fireconf.OrderAscending
		if k.dir == firestore.Desc {
			order = fireconf.OrderDescending
		}
		fields = append(fields, fireconf.IndexField{Path: k.path, Order: order})
	}
	return fireconf.Index{Fields: fields}
}

// Indexes returns the composite indexes the queries of this repository require.
// Indexes are keyed by collection id, so one definition covers every tenant and case.
func Indexes() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name:    configsCollection,
				Indexes: []fireconf.Index{indexOf(activeConfigKeys)},
			},
			{
				Name: snapshotsCollection,
				Indexes: []fireconf.Index{
					indexOf(latestSnapshotKeys),
					indexOf(historySnapshotKeys),
				},
			},
		},
	}
}
