// Package session keeps the CLI's login state (access token and email) in a
// local SQLite file between invocations.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/mediabox/internal/client/migrations"
	"github.com/dmitrijs2005/mediabox/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyAccessToken = "access_token"
	keyEmail       = "email"
)

type Session struct {
	db   *sql.DB
	repo *SQLiteRepository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	// Set the database dialect
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the session database at dsn.
func Open(ctx context.Context, dsn string) (*Session, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Session{db: db, repo: NewSQLiteRepository(db)}, nil
}

func (s *Session) Close() error {
	return s.db.Close()
}

// Token returns the stored access token, or "" when logged out.
func (s *Session) Token(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, keyAccessToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Session) Email(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, keyEmail)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Save stores a fresh login, replacing any previous one.
func (s *Session) Save(ctx context.Context, email, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyEmail, []byte(email)); err != nil {
			return err
		}
		return repo.Set(ctx, keyAccessToken, []byte(token))
	})
}

func (s *Session) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
