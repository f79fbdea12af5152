// Package tablestore is a generic table accessor over a single relational
// store. Callers name tables and pass column→value mappings; the package has
// no knowledge of what the tables hold.
package tablestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and locates the backend.
type Config struct {
	Driver string
	DSN    string
}

// Accessor is the table-level contract. Outside RunInTx every mutating call
// commits on its own.
type Accessor interface {
	CreateTable(ctx context.Context, name string, schema Schema) error
	HasTable(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, table string, values Values) (InsertResult, error)
	Get(ctx context.Context, table string, where Where) (Row, error)
	Find(ctx context.Context, table string, where Where, clause Clause) ([]Row, error)
	Update(ctx context.Context, table string, set Values, where Where) (int64, error)
	Delete(ctx context.Context, table string, where Where) (int64, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Accessor) error) error
}

// Store implements Accessor on top of bun. The zero value is not usable.
type Store struct {
	db     bun.IDB
	root   *bun.DB
	logger *slog.Logger
}

// Open connects to the configured backend and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var db *bun.DB
	switch strings.ToLower(cfg.Driver) {
	case "", DriverSQLite:
		sqldb, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// One connection: every statement is serialized through it.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
		sqldb.SetConnMaxLifetime(0)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.InfoContext(ctx, "Database connection opened",
		slog.String("driver", db.Dialect().Name().String()),
	)

	return New(db, logger), nil
}

// New wraps an existing bun handle.
func New(db *bun.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, root: db, logger: logger}
}

// DB returns the underlying bun handle, e.g. for migrations.
func (s *Store) DB() *bun.DB {
	return s.root
}

// Ping checks the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.root.PingContext(ctx)
}

// Close releases the connection. Stores bound to a transaction do nothing.
func (s *Store) Close() error {
	if _, inTx := s.db.(bun.Tx); inTx || s.root == nil {
		return nil
	}
	s.logger.Info("Closing database connection")
	return s.root.Close()
}

// RunInTx runs fn against an accessor bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Nested
// calls reuse the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Accessor) error) error {
	if _, inTx := s.db.(bun.Tx); inTx {
		return fn(ctx, s)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Store{db: tx, root: s.root, logger: s.logger})
	})
}

var _ Accessor = (*Store)(nil)
