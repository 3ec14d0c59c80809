package firestore

import (
	"reflect"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
)

func firestoreFields(v any) map[string]bool {
	fields := map[string]bool{}
	typ := reflect.TypeOf(v)
	for i := 0; i < typ.NumField(); i++ {
		fields[typ.Field(i).Tag.Get("firestore")] = true
	}
	return fields
}

func findCollection(t *testing.T, cfg *fireconf.Config, name string) fireconf.Collection {
	t.Helper()
	for _, c := range cfg.Collections {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("collection %s has no indexes", name)
	return fireconf.Collection{}
}

func TestIndexes(t *testing.T) {
	cfg := Indexes()
	gt.Array(t, cfg.Collections).Length(2)

	t.Run("active config lookup", func(t *testing.T) {
		configs := findCollection(t, cfg, configsCollection)
		gt.Array(t, configs.Indexes).Length(1)
		gt.Value(t, configs.Indexes[0]).Equal(indexOf(activeConfigKeys))

		gt.Value(t, activeConfigKeys[0].path).Equal(fieldActive)
		gt.Value(t, activeConfigKeys[1]).Equal(orderKey{path: fieldActivatedAt, dir: firestore.Desc})

		docFields := firestoreFields(matrixConfigDoc{})
		for _, k := range activeConfigKeys {
			gt.Bool(t, docFields[k.path]).True()
		}
	})

	t.Run("snapshot ordering", func(t *testing.T) {
		snapshots := findCollection(t, cfg, snapshotsCollection)
		gt.Array(t, snapshots.Indexes).Length(2)
		gt.Value(t, snapshots.Indexes[0]).Equal(indexOf(latestSnapshotKeys))
		gt.Value(t, snapshots.Indexes[1]).Equal(indexOf(historySnapshotKeys))

		docFields := firestoreFields(snapshotDoc{})
		for _, keys := range [][]orderKey{latestSnapshotKeys, historySnapshotKeys} {
			gt.Array(t, keys).Length(2)
			gt.Value(t, keys[0].path).Equal(fieldCreatedAt)
			// sequence breaks ties of equal timestamps
			gt.Value(t, keys[1].path).Equal(fieldSeq)
			gt.Value(t, keys[1].dir).Equal(keys[0].dir)
			for _, k := range keys {
				gt.Bool(t, docFields[k.path]).True()
			}
		}
		gt.Value(t, latestSnapshotKeys[0].dir).Equal(firestore.Desc)
		gt.Value(t, historySnapshotKeys[0].dir).Equal(firestore.Asc)
	})

	t.Run("index orders follow query directions", func(t *testing.T) {
		idx := indexOf(latestSnapshotKeys)
		gt.Value(t, idx.Fields[0].Order).Equal(fireconf.OrderDescending)
		gt.Value(t, idx.Fields[1].Order).Equal(fireconf.OrderDescending)

		idx = indexOf(historySnapshotKeys)
		gt.Value(t, idx.Fields[0].Order).Equal(fireconf.OrderAscending)
	})
}
