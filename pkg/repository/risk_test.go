package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/interfaces"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/repository/firestore"
	"github.com/caseguard/riskmatrix/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

const testMatrixDocument = `{"greenMax":5,"yellowMax":12,"dimensionMultiplier":{},"multiDimensionMinForRed":3,` +
	`"volumeMinIndicatorsForYellow":4,"protectiveCapMaxReduction":0,"indicators":[],"meta":{"supportOnly":false}}`

func newTenantID() types.TenantID {
	return types.TenantID(fmt.Sprintf("tenant-%d", time.Now().UnixNano()))
}

func createConfig(t *testing.T, repo interfaces.Repository, tenantID types.TenantID, version string) *model.MatrixConfig {
	t.Helper()
	created, err := repo.MatrixConfig().Create(context.Background(), &model.MatrixConfig{
		TenantID: tenantID,
		Version:  version,
		Document: testMatrixDocument,
	})
	gt.NoError(t, err).Required()
	return created
}

func countActive(t *testing.T, repo interfaces.Repository, tenantID types.TenantID) int {
	t.Helper()
	configs, err := repo.MatrixConfig().List(context.Background(), tenantID)
	gt.NoError(t, err).Required()

	n := 0
	for _, c := range configs {
		if c.Active {
			n++
		}
	}
	return n
}

func runMatrixConfigRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create stores inactive config", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()

		created, err := repo.MatrixConfig().Create(ctx, &model.MatrixConfig{
			TenantID: tenantID,
			Version:  "2026-01",
			Active:   true,
			Document: testMatrixDocument,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(types.ConfigID(""))
		gt.Bool(t, created.Active).False()
		gt.Value(t, created.ActivatedAt).Nil()
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Value(t, created.Document).Equal(testMatrixDocument)

		got, err := repo.MatrixConfig().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Version).Equal("2026-01")
		gt.Value(t, got.Document).Equal(testMatrixDocument)
		gt.Bool(t, got.Active).False()
	})

	t.Run("Create rejects duplicate version per tenant", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()

		createConfig(t, repo, tenantID, "v1")
		_, err := repo.MatrixConfig().Create(ctx, &model.MatrixConfig{TenantID: tenantID, Version: "v1", Document: testMatrixDocument})
		gt.Bool(t, errors.Is(err, interfaces.ErrConflict)).True()

		// same version in another tenant is fine
		createConfig(t, repo, newTenantID(), "v1")
	})

	t.Run("Get returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.MatrixConfig().Get(ctx, newTenantID(), types.NewConfigID())
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})

	t.Run("Get does not cross tenants", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		cfg := createConfig(t, repo, newTenantID(), "v1")

		_, err := repo.MatrixConfig().Get(ctx, newTenantID(), cfg.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("GetActive returns nil when nothing is active", func(t *testing.T) {
		repo := newRepo(t)
		tenantID := newTenantID()
		createConfig(t, repo, tenantID, "v1")

		active, err := repo.MatrixConfig().GetActive(context.Background(), tenantID)
		gt.NoError(t, err).Required()
		gt.Value(t, active).Nil()
	})

	t.Run("Activate switches the active config", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()
		v1 := createConfig(t, repo, tenantID, "v1")
		v2 := createConfig(t, repo, tenantID, "v2")

		activated, err := repo.MatrixConfig().Activate(ctx, tenantID, v1.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, activated.Active).True()
		gt.Value(t, activated.ActivatedAt).NotNil()

		active, err := repo.MatrixConfig().GetActive(ctx, tenantID)
		gt.NoError(t, err).Required()
		gt.Value(t, active.ID).Equal(v1.ID)

		_, err = repo.MatrixConfig().Activate(ctx, tenantID, v2.ID)
		gt.NoError(t, err).Required()

		active, err = repo.MatrixConfig().GetActive(ctx, tenantID)
		gt.NoError(t, err).Required()
		gt.Value(t, active.ID).Equal(v2.ID)
		gt.Value(t, countActive(t, repo, tenantID)).Equal(1)

		old, err := repo.MatrixConfig().Get(ctx, tenantID, v1.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, old.Active).False()
	})

	t.Run("Activate does not touch other tenants", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantA := newTenantID()
		tenantB := newTenantID()
		a := createConfig(t, repo, tenantA, "v1")
		b := createConfig(t, repo, tenantB, "v1")

		_, err := repo.MatrixConfig().Activate(ctx, tenantA, a.ID)
		gt.NoError(t, err).Required()
		_, err = repo.MatrixConfig().Activate(ctx, tenantB, b.ID)
		gt.NoError(t, err).Required()

		gt.Value(t, countActive(t, repo, tenantA)).Equal(1)
		gt.Value(t, countActive(t, repo, tenantB)).Equal(1)
	})

	t.Run("Activate unknown config returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		tenantID := newTenantID()
		v1 := createConfig(t, repo, tenantID, "v1")
		_, err := repo.MatrixConfig().Activate(context.Background(), tenantID, v1.ID)
		gt.NoError(t, err).Required()

		_, err = repo.MatrixConfig().Activate(context.Background(), tenantID, types.NewConfigID())
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()

		// a failed activation leaves the previous one in place
		active, err := repo.MatrixConfig().GetActive(context.Background(), tenantID)
		gt.NoError(t, err).Required()
		gt.Value(t, active.ID).Equal(v1.ID)
	})

	t.Run("concurrent Activate keeps a single active config", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()

		const n = 8
		ids := make([]types.ConfigID, n)
		for i := 0; i < n; i++ {
			ids[i] = createConfig(t, repo, tenantID, fmt.Sprintf("v%d", i)).ID
		}

		var wg sync.WaitGroup
		errs := make(chan error, n*3)
		for round := 0; round < 3; round++ {
			for _, id := range ids {
				wg.Add(1)
				go func(id types.ConfigID) {
					defer wg.Done()
					if _, err := repo.MatrixConfig().Activate(ctx, tenantID, id); err != nil {
						errs <- err
					}
				}(id)
			}
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			gt.NoError(t, err)
		}

		gt.Value(t, countActive(t, repo, tenantID)).Equal(1)
	})

	t.Run("List returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		tenantID := newTenantID()

		list, err := repo.MatrixConfig().List(context.Background(), tenantID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)

		createConfig(t, repo, tenantID, "v1")
		time.Sleep(2 * time.Millisecond)
		createConfig(t, repo, tenantID, "v2")

		list, err = repo.MatrixConfig().List(context.Background(), tenantID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
		gt.Value(t, list[0].Version).Equal("v2")
		gt.Value(t, list[1].Version).Equal("v1")
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	repo, err := firestore.New(context.Background(), projectID, databaseID,
		firestore.WithCollectionPrefix(fmt.Sprintf("test_%d", time.Now().UnixNano())))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestMatrixConfigRepository_Memory(t *testing.T) {
	runMatrixConfigRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestMatrixConfigRepository_Firestore(t *testing.T) {
	runMatrixConfigRepositoryTest(t, newFirestoreRepository)
}
