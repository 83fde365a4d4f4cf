package pgx

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/lborres/reisetagebuch/adapters/pgx/migrations"
	"github.com/lborres/reisetagebuch/core"
)

// DB is the subset of *pgxpool.Pool used by the store
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Adapter keeps every collection as a table of JSONB documents.
// Each table has the columns key, owner, doc, created_at and updated_at.
type Adapter struct {
	db   DB
	pool *pgxpool.Pool
}

var _ core.DocumentStorage = (*Adapter)(nil)

func New(db DB) *Adapter {
	a := &Adapter{db: db}
	if pool, ok := db.(*pgxpool.Pool); ok {
		a.pool = pool
	}
	return a
}

// Dial returns a provider dial function. With autoMigrate the schema is
// brought up to date before the store is handed out.
func Dial(dsn string, autoMigrate bool, logger *slog.Logger) core.DialFunc[core.DocumentStorage] {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context) (core.DocumentStorage, error) {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres ping: %w", err)
		}

		if autoMigrate {
			if err := Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info("postgres migrations applied")
		}

		logger.Info("postgres connected")
		return New(pool), nil
	}
}

// Migrate applies the embedded goose migrations
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrateDSN opens a short-lived pool and applies the migrations
func MigrateDSN(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("postgres pool: %w", err)
	}
	defer pool.Close()

	return Migrate(ctx, pool)
}

func (a *Adapter) Collection(name string) (core.DocumentCollection, error) {
	if !slices.Contains(core.Collections, name) {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownCollection, name)
	}
	return &Collection{db: a.db, table: pgx.Identifier{name}.Sanitize()}, nil
}

// Close releases the pool when the adapter owns one
func (a *Adapter) Close(ctx context.Context) error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}
