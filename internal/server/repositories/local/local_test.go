package local

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestProducts_CRUD(t *testing.T) {
	r := NewProductsRepository(setupDB(t))
	ctx := context.Background()

	p := &models.Product{ProductID: 10, Status: 1, SKU: "SKU-10", ModelNumber: "M-10", Weight: 2.5}
	require.NoError(t, r.Create(ctx, p))
	assert.Equal(t, models.SyncPending, p.SyncStatus)

	got, err := r.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "SKU-10", got.SKU)
	assert.Equal(t, models.SyncPending, got.SyncStatus)
	assert.Nil(t, got.LastSync)

	synced := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got.SKU = "SKU-10B"
	got.SyncStatus = models.SyncSynced
	got.LastSync = &synced
	require.NoError(t, r.Update(ctx, got))

	got, err = r.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "SKU-10B", got.SKU)
	assert.Equal(t, models.SyncSynced, got.SyncStatus)
	require.NotNil(t, got.LastSync)
	assert.True(t, synced.Equal(*got.LastSync))

	require.NoError(t, r.Delete(ctx, 10))
	_, err = r.Get(ctx, 10)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestProducts_UpdateKeepsStatusWhenEmpty(t *testing.T) {
	r := NewProductsRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Product{ProductID: 1, SyncStatus: models.SyncFailed}))
	require.NoError(t, r.Update(ctx, &models.Product{ProductID: 1, SKU: "x"}))

	got, err := r.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, got.SyncStatus)
	assert.Equal(t, "x", got.SKU)
}

func TestProducts_Errors(t *testing.T) {
	r := NewProductsRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Product{ProductID: 1}))
	assert.ErrorIs(t, r.Create(ctx, &models.Product{ProductID: 1}), common.ErrorAlreadyExists)
	assert.ErrorIs(t, r.Create(ctx, &models.Product{ProductID: 2, SyncStatus: "bogus"}), common.ErrorValidation)
	assert.ErrorIs(t, r.Update(ctx, &models.Product{ProductID: 99}), common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, 99), common.ErrorNotFound)
}

func TestProducts_ListAndCount(t *testing.T) {
	r := NewProductsRepository(setupDB(t))
	ctx := context.Background()

	for i, st := range []models.SyncStatus{models.SyncPending, models.SyncFailed, models.SyncSynced, models.SyncPending} {
		require.NoError(t, r.Create(ctx, &models.Product{ProductID: int64(i + 1), SyncStatus: st}))
	}

	all, err := r.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	pending, err := r.List(ctx, models.SyncPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ProductID)
	assert.Equal(t, int64(4), pending[1].ProductID)

	n, err := r.CountByStatus(ctx, models.SyncPending)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.CountByStatus(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = r.CountByStatus(ctx, models.SyncConflict)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBarcodes_CRUD(t *testing.T) {
	r := NewBarcodesRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.ProductBarcode{ProductID: 1, Barcode: "111", Status: 1}))
	require.NoError(t, r.Create(ctx, &models.ProductBarcode{ProductID: 1, Barcode: "222", Status: 1, SyncStatus: models.SyncSynced}))
	assert.ErrorIs(t, r.Create(ctx, &models.ProductBarcode{ProductID: 1, Barcode: "111"}), common.ErrorAlreadyExists)

	require.NoError(t, r.Update(ctx, &models.ProductBarcode{ProductID: 1, Barcode: "111", Status: 0, SyncStatus: models.SyncFailed}))
	got, err := r.Get(ctx, 1, "111")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Status)
	assert.Equal(t, models.SyncFailed, got.SyncStatus)

	n, err := r.CountByStatus(ctx, models.SyncFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := r.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, r.Delete(ctx, 1, "222"))
	_, err = r.Get(ctx, 1, "222")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDescriptions_CRUD(t *testing.T) {
	r := NewDescriptionsRepository(setupDB(t))
	ctx := context.Background()

	d := &models.ProductDescription{ProductID: 5, SiteID: 1, LanguageID: 2, Name: "Widget"}
	require.NoError(t, r.Create(ctx, d))
	assert.Equal(t, models.SyncPending, d.SyncStatus)

	d.Name = "Widget Pro"
	d.SyncStatus = models.SyncSynced
	require.NoError(t, r.Update(ctx, d))

	got, err := r.Get(ctx, 5, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", got.Name)
	assert.Equal(t, models.SyncSynced, got.SyncStatus)

	_, err = r.Get(ctx, 5, 1, 3)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	n, err := r.CountByStatus(ctx, models.SyncSynced)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.Delete(ctx, 5, 1, 2))
	assert.ErrorIs(t, r.Delete(ctx, 5, 1, 2), common.ErrorNotFound)
}

func TestOrders(t *testing.T) {
	r := NewOrdersRepository(setupDB(t))
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	o := &models.Order{OrderNumber: "POS-0001", Total: 19.99}
	require.NoError(t, r.Create(ctx, o))
	assert.NotZero(t, o.ID)
	assert.Equal(t, "NEW", o.Status)
	assert.Equal(t, models.SyncPending, o.SyncStatus)

	assert.ErrorIs(t, r.Create(ctx, &models.Order{OrderNumber: "POS-0001"}), common.ErrorAlreadyExists)
	assert.ErrorIs(t, r.Create(ctx, &models.Order{}), common.ErrorValidation)

	require.NoError(t, r.Create(ctx, &models.Order{OrderNumber: "POS-0002"}))
	require.NoError(t, r.SetSyncStatus(ctx, o.ID, models.SyncSynced))

	got, err := r.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, got.SyncStatus)
	require.NotNil(t, got.LastSync)
	assert.True(t, now.Equal(*got.LastSync))
	assert.Nil(t, got.RemoteID)

	n, err := r.CountByStatus(ctx, models.SyncPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	synced, err := r.List(ctx, models.SyncSynced)
	require.NoError(t, err)
	require.Len(t, synced, 1)
	assert.Equal(t, "POS-0001", synced[0].OrderNumber)

	assert.ErrorIs(t, r.SetSyncStatus(ctx, 999, models.SyncFailed), common.ErrorNotFound)
	assert.ErrorIs(t, r.SetSyncStatus(ctx, o.ID, "nope"), common.ErrorValidation)
}

func TestOrders_MarkSynced(t *testing.T) {
	r := NewOrdersRepository(setupDB(t))
	now := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	o := &models.Order{OrderNumber: "POS-0003", Total: 5}
	require.NoError(t, r.Create(ctx, o))
	require.NoError(t, r.MarkSynced(ctx, o.ID, 77))

	got, err := r.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, got.SyncStatus)
	require.NotNil(t, got.RemoteID)
	assert.Equal(t, int64(77), *got.RemoteID)
	require.NotNil(t, got.LastSync)
	assert.True(t, now.Equal(*got.LastSync))

	assert.ErrorIs(t, r.MarkSynced(ctx, 999, 1), common.ErrorNotFound)
}

func TestUsers(t *testing.T) {
	r := NewUsersRepository(setupDB(t))
	ctx := context.Background()

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	u := &models.User{Username: "cashier", PasswordHash: "$2a$hash"}
	require.NoError(t, r.Create(ctx, u))
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.PermissionUser, u.Permission)

	assert.ErrorIs(t, r.Create(ctx, &models.User{Username: "cashier", PasswordHash: "x"}), common.ErrorAlreadyExists)

	got, err := r.GetByUsername(ctx, "cashier")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "$2a$hash", got.PasswordHash)

	_, err = r.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepositories_WithTxRollsBack(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := NewRepositories(tx)
		if err := repos.Products.Create(ctx, &models.Product{ProductID: 1}); err != nil {
			return err
		}
		return repos.Products.Create(ctx, &models.Product{ProductID: 1})
	})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	n, err := NewProductsRepository(db).CountByStatus(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
