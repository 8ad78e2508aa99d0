package local

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/posync/internal/dbx"
	"github.com/dmitrijs2005/posync/internal/models"
)

type UsersRepository struct {
	db dbx.DBTX
}

var _ UserRepository = (*UsersRepository)(nil)

func NewUsersRepository(db dbx.DBTX) *UsersRepository {
	return &UsersRepository{db: db}
}

func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, permission, created_at FROM users
		 WHERE username = ?
		 `

	u := &models.User{}
	var perm string
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &perm, &u.CreatedAt)
	if err != nil {
		return nil, mapReadError(err)
	}
	u.Permission = models.Permission(perm)
	return u, nil
}

func (r *UsersRepository) Create(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Permission == "" {
		u.Permission = models.PermissionUser
	}

	query :=
		`INSERT INTO users (username, password_hash, permission, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id
		 `
	err := r.db.QueryRowContext(ctx, query, u.Username, u.PasswordHash, string(u.Permission), u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *UsersRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
