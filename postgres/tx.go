package postgres

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/tinywasm/fluentsql"
	"github.com/tinywasm/fluentsql/internal/observability"
)

// txExecutor runs statements inside one sqlx.Tx. Statements, Commit and
// Rollback are serialized by mu.
type txExecutor struct {
	mu      sync.Mutex
	tx      *sqlx.Tx
	txID    string
	metrics *observability.MetricsCollector
	done    bool
}

func (t *txExecutor) Query(ctx context.Context, query string, args ...fluentsql.Value) ([]fluentsql.Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil, fluentsql.ErrTxDone
	}
	t.metrics.IncrementOperations(t.txID)
	rows, err := queryRows(ctx, t.tx, query, args)
	t.metrics.RecordQuery(err)
	return rows, err
}

func (t *txExecutor) Exec(ctx context.Context, query string, args ...fluentsql.Value) (fluentsql.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fluentsql.Result{}, fluentsql.ErrTxDone
	}
	t.metrics.IncrementOperations(t.txID)
	res, err := execStatement(ctx, t.tx, query, args)
	t.metrics.RecordExec(err)
	return res, err
}

func (t *txExecutor) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fluentsql.ErrTxDone
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		t.metrics.FailTransaction(t.txID, err)
		return wrapError("COMMIT", err)
	}
	t.metrics.CommitTransaction(t.txID)
	return nil
}

func (t *txExecutor) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fluentsql.ErrTxDone
	}
	t.done = true
	err := t.tx.Rollback()
	t.metrics.RollbackTransaction(t.txID, err)
	if err != nil {
		return wrapError("ROLLBACK", err)
	}
	return nil
}
