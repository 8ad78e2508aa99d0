// Package remote talks to the authoritative store kept in PostgreSQL. The
// catalog is read-only from here and agents mirror it into the local store;
// orders captured offline travel the other way.
package remote

import (
	"context"

	"github.com/dmitrijs2005/posync/internal/models"
)

type Repository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListBarcodes(ctx context.Context) ([]models.ProductBarcode, error)
	ListDescriptions(ctx context.Context) ([]models.ProductDescription, error)
	Ping(ctx context.Context) error
}

// OrderWriter pushes locally captured orders upstream.
type OrderWriter interface {
	Ping(ctx context.Context) error
	// CreateOrder inserts o, or refreshes the row with the same order number,
	// and returns its remote id.
	CreateOrder(ctx context.Context, o models.Order) (int64, error)
	UpdateOrder(ctx context.Context, remoteID int64, o models.Order) error
}
