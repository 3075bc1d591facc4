// Package repomanager provides the PostgreSQL RepositoryManager, wiring the
// repository constructors together with schema migrations (goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mediabox/internal/dbx"
	"github.com/dmitrijs2005/mediabox/internal/server/migrations"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/comments"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/posts"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DriverName is the database/sql driver registered by pgx/stdlib.
const DriverName = "pgx"

type PostgresRepositoryManager struct {
	userCache *users.UserCache
}

type Option func(*PostgresRepositoryManager)

// WithUserCache makes Users return repositories that serve FindByID from
// cache. Pass nil to disable.
func WithUserCache(cache *users.UserCache) Option {
	return func(m *PostgresRepositoryManager) { m.userCache = cache }
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	repo := users.NewPostgresRepository(db)
	if m.userCache == nil {
		return repo
	}
	return users.NewCachedRepository(repo, m.userCache)
}

func (m *PostgresRepositoryManager) Posts(db dbx.DBTX) posts.Repository {
	return posts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Comments(db dbx.DBTX) comments.Repository {
	return comments.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(DriverName); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager(opts ...Option) *PostgresRepositoryManager {
	m := &PostgresRepositoryManager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
