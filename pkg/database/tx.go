package database

import (
	"context"
	"fmt"
)

// TxManager runs service-level units of work. Mutating operations use
// ReadWrite so every repository call inside fn shares one transaction:
// on any failure after a tentative write all changes are discarded before
// the error propagates, on success they are committed before the call
// returns. Reads use ReadOnly, which executes against the pool directly.
//
// The interface exists so service unit tests can substitute a pass-through
// implementation alongside repository fakes.
type TxManager interface {
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManager struct {
	db *DB
}

// NewTxManager creates a TxManager backed by the given pool.
func NewTxManager(db *DB) TxManager {
	return &txManager{db: db}
}

var _ TxManager = (*txManager)(nil)

func (m *txManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(SetScope(ctx, &Scope{Conn: m.db.Pool}))
}

func (m *txManager) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(SetScope(ctx, &Scope{Conn: tx})); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
