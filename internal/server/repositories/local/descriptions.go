package local

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/models"
)

type DescriptionsRepository struct {
	db dbx.DBTX
}

var _ DescriptionRepository = (*DescriptionsRepository)(nil)

func NewDescriptionsRepository(db dbx.DBTX) *DescriptionsRepository {
	return &DescriptionsRepository{db: db}
}

const descriptionColumns = `product_id, site_id, language_id, name, description, feature, specification,
	include, required, created_at, updated_at, created_by, updated_by, sync_status, last_sync`

func scanDescription(s scanner) (*models.ProductDescription, error) {
	var (
		d                              models.ProductDescription
		status                         string
		createdAt, updatedAt, lastSync sql.NullTime
	)
	err := s.Scan(&d.ProductID, &d.SiteID, &d.LanguageID, &d.Name, &d.Description, &d.Feature, &d.Specification,
		&d.Include, &d.Required, &createdAt, &updatedAt, &d.CreatedBy, &d.UpdatedBy, &status, &lastSync)
	if err != nil {
		return nil, err
	}
	d.SyncStatus = models.SyncStatus(status)
	d.CreatedAt = timePtr(createdAt)
	d.UpdatedAt = timePtr(updatedAt)
	d.LastSync = timePtr(lastSync)
	return &d, nil
}

func (r *DescriptionsRepository) List(ctx context.Context, status models.SyncStatus) ([]models.ProductDescription, error) {
	where, args := statusFilter(status)
	query := `SELECT ` + descriptionColumns + ` FROM local_product_descriptions` + where +
		` ORDER BY product_id, site_id, language_id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ProductDescription{}
	for rows.Next() {
		d, err := scanDescription(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *DescriptionsRepository) Get(ctx context.Context, productID int64, siteID, languageID int) (*models.ProductDescription, error) {
	query := `SELECT ` + descriptionColumns + ` FROM local_product_descriptions
		WHERE product_id = ? AND site_id = ? AND language_id = ?`
	d, err := scanDescription(r.db.QueryRowContext(ctx, query, productID, siteID, languageID))
	if err != nil {
		return nil, mapReadError(err)
	}
	return d, nil
}

func (r *DescriptionsRepository) Create(ctx context.Context, d *models.ProductDescription) error {
	st, err := createStatus(d.SyncStatus)
	if err != nil {
		return err
	}
	query := `INSERT INTO local_product_descriptions (` + descriptionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		d.ProductID, d.SiteID, d.LanguageID, d.Name, d.Description, d.Feature, d.Specification,
		d.Include, d.Required, nullTime(d.CreatedAt), nullTime(d.UpdatedAt), d.CreatedBy, d.UpdatedBy,
		string(st), nullTime(d.LastSync))
	if err != nil {
		return mapWriteError(err)
	}
	d.SyncStatus = st
	return nil
}

func (r *DescriptionsRepository) Update(ctx context.Context, d *models.ProductDescription) error {
	st, err := updateStatus(d.SyncStatus)
	if err != nil {
		return err
	}
	query := `UPDATE local_product_descriptions SET
		name = ?, description = ?, feature = ?, specification = ?, include = ?, required = ?,
		created_at = ?, updated_at = ?, created_by = ?, updated_by = ?,
		sync_status = COALESCE(NULLIF(?, ''), sync_status),
		last_sync = COALESCE(?, last_sync)
		WHERE product_id = ? AND site_id = ? AND language_id = ?`
	return mustAffect(r.db.ExecContext(ctx, query,
		d.Name, d.Description, d.Feature, d.Specification, d.Include, d.Required,
		nullTime(d.CreatedAt), nullTime(d.UpdatedAt), d.CreatedBy, d.UpdatedBy,
		st, nullTime(d.LastSync), d.ProductID, d.SiteID, d.LanguageID))
}

func (r *DescriptionsRepository) Delete(ctx context.Context, productID int64, siteID, languageID int) error {
	return mustAffect(r.db.ExecContext(ctx,
		`DELETE FROM local_product_descriptions WHERE product_id = ? AND site_id = ? AND language_id = ?`,
		productID, siteID, languageID))
}

func (r *DescriptionsRepository) CountByStatus(ctx context.Context, status models.SyncStatus) (int64, error) {
	return countByStatus(ctx, r.db, "local_product_descriptions", status)
}
