package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/posync/internal/dbx"
)

// SQLiteRepository keeps entries in the agent_state table.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) (*Entry, error) {
	e := Entry{Name: name}
	err := r.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM agent_state WHERE name = ?`, name,
	).Scan(&e.Value, &e.UpdatedAt)
	if dbx.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %q: %w", name, err)
	}
	return &e, nil
}

// Put inserts or overwrites name and stamps the write time.
func (r *SQLiteRepository) Put(ctx context.Context, name, value string) error {
	query := `INSERT INTO agent_state (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, name, value, r.now().UTC()); err != nil {
		return fmt.Errorf("write state %q: %w", name, err)
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM agent_state WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("remove state %q: %w", name, err)
	}
	if err := dbx.Affected(res); err != nil {
		if dbx.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove state %q: %w", name, err)
	}
	return true, nil
}
