package remote

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/models"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var (
	_ Repository  = (*PostgresRepository)(nil)
	_ OrderWriter = (*PostgresRepository)(nil)
)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open prepares a pgx-backed handle for dsn. No connection is made until
// first use.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote store: %w", err)
	}
	return db, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	query :=
		`SELECT product_id, status, brand_id, ebay_id, model_number, sku, date_available,
		        qty_preorder, barcode, weight, weight_class_id, created_at, updated_at,
		        created_by, updated_by
		 FROM products
		 ORDER BY product_id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		var (
			p                    models.Product
			dateAvail, barcode   sql.NullString
			createdAt, updatedAt sql.NullTime
		)
		err := rows.Scan(&p.ProductID, &p.Status, &p.BrandID, &p.EbayID, &p.ModelNumber, &p.SKU, &dateAvail,
			&p.QtyPreorder, &barcode, &p.Weight, &p.WeightClassID, &createdAt, &updatedAt,
			&p.CreatedBy, &p.UpdatedBy)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		p.DateAvailable = dateAvail.String
		p.Barcode = barcode.String
		p.CreatedAt = timePtr(createdAt)
		p.UpdatedAt = timePtr(updatedAt)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListBarcodes(ctx context.Context) ([]models.ProductBarcode, error) {
	query :=
		`SELECT product_id, barcode, status
		 FROM product_barcodes
		 ORDER BY product_id, barcode
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ProductBarcode{}
	for rows.Next() {
		var b models.ProductBarcode
		if err := rows.Scan(&b.ProductID, &b.Barcode, &b.Status); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListDescriptions(ctx context.Context) ([]models.ProductDescription, error) {
	query :=
		`SELECT product_id, site_id, language_id, name, description, feature, specification,
		        include, required, created_at, updated_at, created_by, updated_by
		 FROM product_descriptions
		 ORDER BY product_id, site_id, language_id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ProductDescription{}
	for rows.Next() {
		var (
			d                                     models.ProductDescription
			name, desc, feature, spec, incl, reqd sql.NullString
			createdAt, updatedAt                  sql.NullTime
		)
		err := rows.Scan(&d.ProductID, &d.SiteID, &d.LanguageID, &name, &desc, &feature, &spec,
			&incl, &reqd, &createdAt, &updatedAt, &d.CreatedBy, &d.UpdatedBy)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		d.Name, d.Description, d.Feature = name.String, desc.String, feature.String
		d.Specification, d.Include, d.Required = spec.String, incl.String, reqd.String
		d.CreatedAt = timePtr(createdAt)
		d.UpdatedAt = timePtr(updatedAt)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, o models.Order) (int64, error) {
	query :=
		`INSERT INTO orders (order_number, total_amount, customer_name, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (order_number) DO UPDATE
		 SET total_amount = EXCLUDED.total_amount,
		     customer_name = EXCLUDED.customer_name,
		     status = EXCLUDED.status,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, o.OrderNumber, o.Total, o.CustomerName, o.Status, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) UpdateOrder(ctx context.Context, remoteID int64, o models.Order) error {
	query :=
		`UPDATE orders
		 SET order_number = $1, total_amount = $2, customer_name = $3, status = $4, updated_at = $5
		 WHERE id = $6`

	res, err := r.db.ExecContext(ctx, query, o.OrderNumber, o.Total, o.CustomerName, o.Status, time.Now().UTC(), remoteID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := dbx.Affected(res); err != nil {
		if dbx.IsNoRows(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
