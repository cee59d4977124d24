package graph

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"go.uber.org/zap"
)

// Each statement group runs with the extension loaded and ag_catalog on
// the search path. SET LOCAL scopes the setting to the surrounding
// transaction, so pooled connections never leak graph context. The
// statements are issued separately: the pgx extended protocol rejects
// multi-command strings.
var sessionPreamble = []string{
	`LOAD 'age'`,
	`SET LOCAL search_path = ag_catalog, "$user", public`,
}

// Store owns the PostgreSQL connection pool and the graph catalog
// operations. It is safe for concurrent use; per-graph work goes
// through a Session obtained from Session or CreateGraph.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open connects to PostgreSQL via the pgx driver and verifies the
// connection. The caller owns the returned Store and must Close it.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, extensionErr(err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, extensionErr(err)
	}
	return NewStore(db, logger), nil
}

// NewStore wraps an existing pool. Used by Open and by tests that
// inject their own *sql.DB.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, log: logger}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying pool for catalog-level maintenance such as
// index creation.
func (s *Store) DB() *sql.DB { return s.db }

// withTx runs fn inside one transaction with the session preamble
// applied. Commit on success, rollback on any failure; no exit path
// leaves the transaction open.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return extensionErr(err)
	}
	for _, stmt := range sessionPreamble {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return extensionErr(err)
		}
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return extensionErr(err)
	}
	return nil
}

// ListGraphs returns the names of all graphs in the database catalog,
// sorted.
func (s *Store) ListGraphs(ctx context.Context) ([]string, error) {
	var names []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT name FROM ag_graph ORDER BY name`)
		if err != nil {
			return extensionErr(err)
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return extensionErr(err)
			}
			names = append(names, name)
		}
		return extensionErr(rows.Err())
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// GraphExists reports whether the named graph is declared in the
// catalog.
func (s *Store) GraphExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM ag_graph WHERE name = $1)`, name)
		if err := row.Scan(&exists); err != nil {
			return extensionErr(err)
		}
		return nil
	})
	return exists, err
}

// CreateGraph registers a new graph and returns a Session bound to it.
// Fails with ErrDuplicateGraph if the name is taken and with
// ErrInvalidIdentifier if the name is not a safe identifier.
func (s *Store) CreateGraph(ctx context.Context, name string) (*Session, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}
	exists, err := s.GraphExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateGraph, name)
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT ag_catalog.create_graph($1)`, name); err != nil {
			return createGraphErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("graph created", zap.String("graph", name))
	return &Session{store: s, graph: name}, nil
}

// DropGraph removes a graph and everything in it.
func (s *Store) DropGraph(ctx context.Context, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	exists, err := s.GraphExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, name)
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT ag_catalog.drop_graph($1, true)`, name); err != nil {
			return extensionErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("graph dropped", zap.String("graph", name))
	return nil
}

// Session returns a Session bound to an existing graph. Fails with
// ErrGraphNotFound if the graph is not declared; use CreateGraph to
// declare one.
func (s *Store) Session(ctx context.Context, name string) (*Session, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}
	exists, err := s.GraphExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrGraphNotFound, name)
	}
	return &Session{store: s, graph: name}, nil
}
