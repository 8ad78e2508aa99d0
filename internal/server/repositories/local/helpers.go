package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/posync/internal/common"
	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func countByStatus(ctx context.Context, db dbx.DBTX, table string, status models.SyncStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM ` + table
	args := []any{}
	if status != "" {
		query += ` WHERE sync_status = ?`
		args = append(args, string(status))
	}

	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// statusFilter renders an optional "WHERE sync_status = ?" clause.
func statusFilter(status models.SyncStatus) (string, []any) {
	if status == "" {
		return "", nil
	}
	return ` WHERE sync_status = ?`, []any{string(status)}
}

// createStatus returns the status a new row is stored with; empty means PENDING.
func createStatus(s models.SyncStatus) (models.SyncStatus, error) {
	st, err := models.ParseSyncStatus(string(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return st, nil
}

// updateStatus validates s but keeps empty as "leave unchanged".
func updateStatus(s models.SyncStatus) (string, error) {
	if s == "" {
		return "", nil
	}
	st, err := models.ParseSyncStatus(string(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return string(st), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// mapWriteError turns constraint violations into common.ErrorAlreadyExists.
func mapWriteError(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// extended codes disabled on this connection
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

// mapReadError turns sql.ErrNoRows into common.ErrorNotFound.
func mapReadError(err error) error {
	if dbx.IsNoRows(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

// mustAffect reports common.ErrorNotFound when res touched zero rows.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return mapWriteError(err)
	}
	if err := dbx.Affected(res); err != nil {
		return mapReadError(err)
	}
	return nil
}
