package fluentsql

import (
	"context"

	"github.com/tinywasm/fluentsql/internal/log"
)

// TxBoundExecutor represents an executor bound to a transaction.
type TxBoundExecutor interface {
	Executor
	Commit() error
	Rollback() error
}

// TxExecutor represents an executor that supports transactions.
type TxExecutor interface {
	Executor
	BeginTx(ctx context.Context) (TxBoundExecutor, error)
}

// Tx is a DB whose statements run inside one transaction. Commit or Rollback
// ends it; later calls return ErrTxDone.
type Tx struct {
	*DB
	bound TxBoundExecutor
	done  bool
}

// Begin starts a transaction. The returned Tx has its own builder state.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	txExec, ok := db.exec.(TxExecutor)
	if !ok {
		return nil, ErrNoTxSupport
	}
	bound, err := txExec.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	s := db.Session()
	s.exec = bound
	return &Tx{DB: s, bound: bound}, nil
}

func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	return tx.bound.Commit()
}

func (tx *Tx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	return tx.bound.Rollback()
}

// Tx executes a function within a transaction. It commits when fn returns nil
// and rolls back otherwise.
func (db *DB) Tx(ctx context.Context, fn func(tx *DB) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx.DB); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}
