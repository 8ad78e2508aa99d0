// Package migrations embeds the goose migrations of the backend: one set for
// the authoritative PostgreSQL catalog and one for the SQLite local mirror.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Set names one embedded migration directory and the dialect it targets.
type Set struct {
	Dir     string
	Dialect goose.Dialect
}

var (
	Postgres = Set{Dir: "postgres", Dialect: goose.DialectPostgres}
	SQLite   = Set{Dir: "sqlite", Dialect: goose.DialectSQLite3}
)

// FS returns the migration files of s.
func (s Set) FS() (fs.FS, error) {
	return fs.Sub(files, s.Dir)
}

// gooseUp is a seam for testing the goose provider.
var gooseUp = func(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) (int, error) {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, err
	}
	res, err := p.Up(ctx)
	return len(res), err
}

// Up applies every pending migration of s to db and returns how many ran.
// Each set keeps its own goose version table, so both may share a process.
func Up(ctx context.Context, db *sql.DB, s Set) (int, error) {
	fsys, err := s.FS()
	if err != nil {
		return 0, fmt.Errorf("failed to open %s migrations: %w", s.Dir, err)
	}
	n, err := gooseUp(ctx, db, s.Dialect, fsys)
	if err != nil {
		return n, fmt.Errorf("failed to apply %s migrations: %w", s.Dir, err)
	}
	return n, nil
}
