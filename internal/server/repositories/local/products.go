package local

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/models"
)

type ProductsRepository struct {
	db dbx.DBTX
}

var _ ProductRepository = (*ProductsRepository)(nil)

func NewProductsRepository(db dbx.DBTX) *ProductsRepository {
	return &ProductsRepository{db: db}
}

const productColumns = `product_id, status, brand_id, ebay_id, model_number, sku, date_available,
	qty_preorder, barcode, weight, weight_class_id, created_at, updated_at, created_by, updated_by,
	sync_status, last_sync`

func scanProduct(s scanner) (*models.Product, error) {
	var (
		p                              models.Product
		status                         string
		createdAt, updatedAt, lastSync sql.NullTime
	)
	err := s.Scan(&p.ProductID, &p.Status, &p.BrandID, &p.EbayID, &p.ModelNumber, &p.SKU, &p.DateAvailable,
		&p.QtyPreorder, &p.Barcode, &p.Weight, &p.WeightClassID, &createdAt, &updatedAt, &p.CreatedBy, &p.UpdatedBy,
		&status, &lastSync)
	if err != nil {
		return nil, err
	}
	p.SyncStatus = models.SyncStatus(status)
	p.CreatedAt = timePtr(createdAt)
	p.UpdatedAt = timePtr(updatedAt)
	p.LastSync = timePtr(lastSync)
	return &p, nil
}

func (r *ProductsRepository) List(ctx context.Context, status models.SyncStatus) ([]models.Product, error) {
	where, args := statusFilter(status)
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM local_products`+where+` ORDER BY product_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *ProductsRepository) Get(ctx context.Context, productID int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM local_products WHERE product_id = ?`, productID)
	p, err := scanProduct(row)
	if err != nil {
		return nil, mapReadError(err)
	}
	return p, nil
}

func (r *ProductsRepository) Create(ctx context.Context, p *models.Product) error {
	st, err := createStatus(p.SyncStatus)
	if err != nil {
		return err
	}

	query := `INSERT INTO local_products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		p.ProductID, p.Status, p.BrandID, p.EbayID, p.ModelNumber, p.SKU, p.DateAvailable,
		p.QtyPreorder, p.Barcode, p.Weight, p.WeightClassID, nullTime(p.CreatedAt), nullTime(p.UpdatedAt),
		p.CreatedBy, p.UpdatedBy, string(st), nullTime(p.LastSync))
	if err != nil {
		return mapWriteError(err)
	}
	p.SyncStatus = st
	return nil
}

// Update overwrites the row keyed by p.ProductID. An empty SyncStatus or nil
// LastSync keeps the stored value.
func (r *ProductsRepository) Update(ctx context.Context, p *models.Product) error {
	st, err := updateStatus(p.SyncStatus)
	if err != nil {
		return err
	}

	query := `UPDATE local_products SET
		status = ?, brand_id = ?, ebay_id = ?, model_number = ?, sku = ?, date_available = ?,
		qty_preorder = ?, barcode = ?, weight = ?, weight_class_id = ?, created_at = ?, updated_at = ?,
		created_by = ?, updated_by = ?,
		sync_status = COALESCE(NULLIF(?, ''), sync_status),
		last_sync = COALESCE(?, last_sync)
		WHERE product_id = ?`
	return mustAffect(r.db.ExecContext(ctx, query,
		p.Status, p.BrandID, p.EbayID, p.ModelNumber, p.SKU, p.DateAvailable,
		p.QtyPreorder, p.Barcode, p.Weight, p.WeightClassID, nullTime(p.CreatedAt), nullTime(p.UpdatedAt),
		p.CreatedBy, p.UpdatedBy, st, nullTime(p.LastSync), p.ProductID))
}

func (r *ProductsRepository) Delete(ctx context.Context, productID int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM local_products WHERE product_id = ?`, productID))
}

func (r *ProductsRepository) CountByStatus(ctx context.Context, status models.SyncStatus) (int64, error) {
	return countByStatus(ctx, r.db, "local_products", status)
}
