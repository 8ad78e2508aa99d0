package local

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/models"
)

type BarcodesRepository struct {
	db dbx.DBTX
}

var _ BarcodeRepository = (*BarcodesRepository)(nil)

func NewBarcodesRepository(db dbx.DBTX) *BarcodesRepository {
	return &BarcodesRepository{db: db}
}

func scanBarcode(s scanner) (*models.ProductBarcode, error) {
	var (
		b        models.ProductBarcode
		status   string
		lastSync sql.NullTime
	)
	if err := s.Scan(&b.ProductID, &b.Barcode, &b.Status, &status, &lastSync); err != nil {
		return nil, err
	}
	b.SyncStatus = models.SyncStatus(status)
	b.LastSync = timePtr(lastSync)
	return &b, nil
}

func (r *BarcodesRepository) List(ctx context.Context, status models.SyncStatus) ([]models.ProductBarcode, error) {
	where, args := statusFilter(status)
	query := `SELECT product_id, barcode, status, sync_status, last_sync FROM local_product_barcodes` +
		where + ` ORDER BY product_id, barcode`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ProductBarcode{}
	for rows.Next() {
		b, err := scanBarcode(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *BarcodesRepository) Get(ctx context.Context, productID int64, barcode string) (*models.ProductBarcode, error) {
	query := `SELECT product_id, barcode, status, sync_status, last_sync FROM local_product_barcodes
		WHERE product_id = ? AND barcode = ?`
	b, err := scanBarcode(r.db.QueryRowContext(ctx, query, productID, barcode))
	if err != nil {
		return nil, mapReadError(err)
	}
	return b, nil
}

func (r *BarcodesRepository) Create(ctx context.Context, b *models.ProductBarcode) error {
	st, err := createStatus(b.SyncStatus)
	if err != nil {
		return err
	}
	query := `INSERT INTO local_product_barcodes (product_id, barcode, status, sync_status, last_sync)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, b.ProductID, b.Barcode, b.Status, string(st), nullTime(b.LastSync)); err != nil {
		return mapWriteError(err)
	}
	b.SyncStatus = st
	return nil
}

func (r *BarcodesRepository) Update(ctx context.Context, b *models.ProductBarcode) error {
	st, err := updateStatus(b.SyncStatus)
	if err != nil {
		return err
	}
	query := `UPDATE local_product_barcodes SET status = ?,
		sync_status = COALESCE(NULLIF(?, ''), sync_status),
		last_sync = COALESCE(?, last_sync)
		WHERE product_id = ? AND barcode = ?`
	return mustAffect(r.db.ExecContext(ctx, query, b.Status, st, nullTime(b.LastSync), b.ProductID, b.Barcode))
}

func (r *BarcodesRepository) Delete(ctx context.Context, productID int64, barcode string) error {
	return mustAffect(r.db.ExecContext(ctx,
		`DELETE FROM local_product_barcodes WHERE product_id = ? AND barcode = ?`, productID, barcode))
}

func (r *BarcodesRepository) CountByStatus(ctx context.Context, status models.SyncStatus) (int64, error) {
	return countByStatus(ctx, r.db, "local_product_barcodes", status)
}
