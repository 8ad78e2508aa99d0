package syncruns

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/posync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Record(ctx context.Context, run Run) error {
	query := `INSERT INTO sync_runs (id, started_at, finished_at, success, message, errors)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET started_at = excluded.started_at,
				finished_at = excluded.finished_at,
				success = excluded.success,
				message = excluded.message,
				errors = excluded.errors
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Success, run.Message, run.Errors)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Last(ctx context.Context) (*Run, error) {
	runs, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, success, message, errors
		FROM sync_runs ORDER BY finished_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync runs: %w", err)
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Success, &run.Message, &run.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Prune(ctx context.Context, keep int) error {
	query := `DELETE FROM sync_runs WHERE id NOT IN (
		SELECT id FROM sync_runs ORDER BY finished_at DESC LIMIT ?)`
	if _, err := r.db.ExecContext(ctx, query, keep); err != nil {
		return fmt.Errorf("failed to prune sync runs: %w", err)
	}
	return nil
}
