// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fuzzbin/fuzzbin/internal/log"
	"github.com/fuzzbin/fuzzbin/internal/persistence/sqlite"
)

// Store is the indexed library over a single SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the library database at dbPath,
// enforces WAL + foreign_keys + busy_timeout, and applies any
// outstanding schema migrations before returning.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.WithComponent("store").Info().Str("path", dbPath).Msg("library store opened")
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying pool for components (e.g. integrity
// verification) that need to run outside the Store's own API.
func (s *Store) DB() *sql.DB {
	return s.db
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting read
// helpers run either standalone or inside withTx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type txKey struct{}

// Transaction opens a store-wide transaction scope (§4.F: "begins a
// transaction on first use … nested scopes share the outermost
// transaction"). Every Store method called with the ctx passed to fn
// joins the same underlying *sql.Tx instead of opening its own, so a
// caller can compose several writes (e.g. CreateVideo + GetOrCreateArtist
// + LinkVideoArtist + RecordSource) atomically. If ctx already carries a
// transaction (a nested Transaction call), that transaction is reused
// rather than nesting a second BEGIN.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit tx: %w", err)
	}
	return nil
}

// querierFor returns the transaction carried on ctx by Transaction, or
// the store's pool if ctx carries none, so every write helper
// automatically joins an ambient transaction scope.
func (s *Store) querierFor(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// withTx runs fn inside a transaction, committing on success and
// rolling back on any error or panic (§4.F: multi-table writes and
// status transitions are atomic). If ctx already carries a transaction
// opened by Transaction, fn joins it instead of opening a nested one;
// in that case commit/rollback is the enclosing Transaction call's
// responsibility.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(tx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit tx: %w", err)
	}
	return nil
}
