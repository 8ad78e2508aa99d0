package local

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/models"
)

type OrdersRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

var _ OrderRepository = (*OrdersRepository)(nil)

func NewOrdersRepository(db dbx.DBTX) *OrdersRepository {
	return &OrdersRepository{db: db, now: time.Now}
}

const orderColumns = `id, order_number, total, customer_name, customer_email, status, remote_id,
	sync_status, last_sync, created_at, updated_at`

func scanOrder(s scanner) (*models.Order, error) {
	var (
		o        models.Order
		status   string
		remoteID sql.NullInt64
		lastSync sql.NullTime
	)
	err := s.Scan(&o.ID, &o.OrderNumber, &o.Total, &o.CustomerName, &o.CustomerEmail, &o.Status, &remoteID,
		&status, &lastSync, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if remoteID.Valid {
		o.RemoteID = &remoteID.Int64
	}
	o.SyncStatus = models.SyncStatus(status)
	o.LastSync = timePtr(lastSync)
	return &o, nil
}

func (r *OrdersRepository) List(ctx context.Context, status models.SyncStatus) ([]models.Order, error) {
	where, args := statusFilter(status)
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM local_orders`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *OrdersRepository) Get(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM local_orders WHERE id = ?`, id))
	if err != nil {
		return nil, mapReadError(err)
	}
	return o, nil
}

// Create stores a captured order and fills in its ID and timestamps.
func (r *OrdersRepository) Create(ctx context.Context, o *models.Order) error {
	if strings.TrimSpace(o.OrderNumber) == "" {
		return fmt.Errorf("%w: order number is required", common.ErrorValidation)
	}
	st, err := createStatus(o.SyncStatus)
	if err != nil {
		return err
	}
	if o.Status == "" {
		o.Status = "NEW"
	}
	now := r.now().UTC()

	query := `INSERT INTO local_orders (order_number, total, customer_name, customer_email, status, remote_id,
		sync_status, last_sync, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	var remoteID any
	if o.RemoteID != nil {
		remoteID = *o.RemoteID
	}
	err = r.db.QueryRowContext(ctx, query, o.OrderNumber, o.Total, o.CustomerName, o.CustomerEmail, o.Status,
		remoteID, string(st), nullTime(o.LastSync), now, now).Scan(&o.ID)
	if err != nil {
		return mapWriteError(err)
	}
	o.SyncStatus = st
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

// SetSyncStatus moves an order to status. SYNCED also stamps last_sync.
func (r *OrdersRepository) SetSyncStatus(ctx context.Context, id int64, status models.SyncStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown sync status %q", common.ErrorValidation, status)
	}
	now := r.now().UTC()
	var lastSync any
	if status == models.SyncSynced {
		lastSync = now
	}
	query := `UPDATE local_orders SET sync_status = ?, last_sync = COALESCE(?, last_sync), updated_at = ?
		WHERE id = ?`
	return mustAffect(r.db.ExecContext(ctx, query, string(status), lastSync, now, id))
}

// MarkSynced records the remote id an order was pushed to and moves it to SYNCED.
func (r *OrdersRepository) MarkSynced(ctx context.Context, id, remoteID int64) error {
	now := r.now().UTC()
	query := `UPDATE local_orders SET remote_id = ?, sync_status = ?, last_sync = ?, updated_at = ?
		WHERE id = ?`
	return mustAffect(r.db.ExecContext(ctx, query, remoteID, string(models.SyncSynced), now, now, id))
}

func (r *OrdersRepository) CountByStatus(ctx context.Context, status models.SyncStatus) (int64, error) {
	return countByStatus(ctx, r.db, "local_orders", status)
}
