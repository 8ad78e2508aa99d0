package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/posync/internal/models"
)

// FetchProducts returns the full remote product collection.
func (c *HTTPClient) FetchProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, pathProducts, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchBarcodes returns the full remote barcode collection.
func (c *HTTPClient) FetchBarcodes(ctx context.Context) ([]models.ProductBarcode, error) {
	var out []models.ProductBarcode
	if err := c.do(ctx, http.MethodGet, pathBarcodes, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchDescriptions returns the full remote description collection.
func (c *HTTPClient) FetchDescriptions(ctx context.Context) ([]models.ProductDescription, error) {
	var out []models.ProductDescription
	if err := c.do(ctx, http.MethodGet, pathDescriptions, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func productPath(id int64) string {
	return pathLocalProducts + keyPath(itoa(id))
}

func barcodePath(productID int64, barcode string) string {
	return pathLocalBarcodes + keyPath(itoa(productID), barcode)
}

func descriptionPath(productID int64, siteID, languageID int) string {
	return pathLocalDescriptions + keyPath(itoa(productID), itoa(int64(siteID)), itoa(int64(languageID)))
}

func (c *HTTPClient) ProductExists(ctx context.Context, productID int64) (bool, error) {
	return c.exists(ctx, productPath(productID))
}

func (c *HTTPClient) CreateProduct(ctx context.Context, p models.Product) error {
	return c.do(ctx, http.MethodPost, pathLocalProducts, p, nil)
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, p models.Product) error {
	return c.do(ctx, http.MethodPut, productPath(p.ProductID), p, nil)
}

func (c *HTTPClient) BarcodeExists(ctx context.Context, productID int64, barcode string) (bool, error) {
	return c.exists(ctx, barcodePath(productID, barcode))
}

func (c *HTTPClient) CreateBarcode(ctx context.Context, b models.ProductBarcode) error {
	return c.do(ctx, http.MethodPost, pathLocalBarcodes, b, nil)
}

func (c *HTTPClient) UpdateBarcode(ctx context.Context, b models.ProductBarcode) error {
	return c.do(ctx, http.MethodPut, barcodePath(b.ProductID, b.Barcode), b, nil)
}

func (c *HTTPClient) DescriptionExists(ctx context.Context, productID int64, siteID, languageID int) (bool, error) {
	return c.exists(ctx, descriptionPath(productID, siteID, languageID))
}

func (c *HTTPClient) CreateDescription(ctx context.Context, d models.ProductDescription) error {
	return c.do(ctx, http.MethodPost, pathLocalDescriptions, d, nil)
}

func (c *HTTPClient) UpdateDescription(ctx context.Context, d models.ProductDescription) error {
	return c.do(ctx, http.MethodPut, descriptionPath(d.ProductID, d.SiteID, d.LanguageID), d, nil)
}
