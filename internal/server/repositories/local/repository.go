// Package local is the backend's SQLite mirror of the catalog plus the
// records captured while offline (orders) and the accounts allowed to log in.
// Every mirrored row carries its own sync_status and last_sync.
package local

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/filex"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/dmitrijs2005/posync/internal/server/migrations"
)

// Counter counts the rows of one collection, optionally by status.
// An empty status counts every row.
type Counter interface {
	CountByStatus(ctx context.Context, status models.SyncStatus) (int64, error)
}

type ProductRepository interface {
	Counter
	List(ctx context.Context, status models.SyncStatus) ([]models.Product, error)
	Get(ctx context.Context, productID int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, productID int64) error
}

type BarcodeRepository interface {
	Counter
	List(ctx context.Context, status models.SyncStatus) ([]models.ProductBarcode, error)
	Get(ctx context.Context, productID int64, barcode string) (*models.ProductBarcode, error)
	Create(ctx context.Context, b *models.ProductBarcode) error
	Update(ctx context.Context, b *models.ProductBarcode) error
	Delete(ctx context.Context, productID int64, barcode string) error
}

type DescriptionRepository interface {
	Counter
	List(ctx context.Context, status models.SyncStatus) ([]models.ProductDescription, error)
	Get(ctx context.Context, productID int64, siteID, languageID int) (*models.ProductDescription, error)
	Create(ctx context.Context, d *models.ProductDescription) error
	Update(ctx context.Context, d *models.ProductDescription) error
	Delete(ctx context.Context, productID int64, siteID, languageID int) error
}

type OrderRepository interface {
	Counter
	List(ctx context.Context, status models.SyncStatus) ([]models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	SetSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error
	MarkSynced(ctx context.Context, id, remoteID int64) error
}

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Count(ctx context.Context) (int64, error)
}

// Repositories bundles the local stores bound to one handle.
type Repositories struct {
	Products     ProductRepository
	Barcodes     BarcodeRepository
	Descriptions DescriptionRepository
	Orders       OrderRepository
	Users        UserRepository
}

// NewRepositories binds every local store to db, which may be a *sql.DB or
// a *sql.Tx handed out by dbx.WithTx.
func NewRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Products:     NewProductsRepository(db),
		Barcodes:     NewBarcodesRepository(db),
		Descriptions: NewDescriptionsRepository(db),
		Orders:       NewOrdersRepository(db),
		Users:        NewUsersRepository(db),
	}
}

// Open opens (creating if needed) the SQLite file at path and migrates it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("failed to prepare local store: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// one writer at a time; also keeps ":memory:" shared across calls
	db.SetMaxOpenConns(1)

	if _, err := migrations.Up(ctx, db, migrations.SQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
