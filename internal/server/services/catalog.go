package services

import (
	"context"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/dmitrijs2005/posync/internal/server/repositories/remote"
)

// CatalogService serves the authoritative catalog. With a nil repository
// every call fails with common.ErrorRemoteDisabled.
type CatalogService struct {
	remote remote.Repository
}

func NewCatalogService(r remote.Repository) *CatalogService {
	return &CatalogService{remote: r}
}

func (s *CatalogService) Enabled() bool {
	return s.remote != nil
}

func (s *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	if s.remote == nil {
		return nil, common.ErrorRemoteDisabled
	}
	return s.remote.ListProducts(ctx)
}

func (s *CatalogService) Barcodes(ctx context.Context) ([]models.ProductBarcode, error) {
	if s.remote == nil {
		return nil, common.ErrorRemoteDisabled
	}
	return s.remote.ListBarcodes(ctx)
}

func (s *CatalogService) Descriptions(ctx context.Context) ([]models.ProductDescription, error) {
	if s.remote == nil {
		return nil, common.ErrorRemoteDisabled
	}
	return s.remote.ListDescriptions(ctx)
}

// Ping reports whether the remote store answers.
func (s *CatalogService) Ping(ctx context.Context) error {
	if s.remote == nil {
		return common.ErrorRemoteDisabled
	}
	return s.remote.Ping(ctx)
}
