package fluentsql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBegin(t *testing.T) {
	ctx := context.Background()

	t.Run("executor without transactions", func(t *testing.T) {
		_, err := newTestDB(new(MockExecutor)).Begin(ctx)
		assert.ErrorIs(t, err, ErrNoTxSupport)
		assert.ErrorIs(t, newTestDB(new(MockExecutor)).Tx(ctx, func(*DB) error { return nil }), ErrNoTxSupport)
	})

	t.Run("begin failure", func(t *testing.T) {
		exec := new(MockTxExecutor)
		refused := errors.New("refused")
		exec.On("BeginTx", mock.Anything).Return(nil, refused).Once()

		_, err := newTestDB(exec).Begin(ctx)
		assert.Equal(t, refused, err)
	})

	t.Run("statements run on the bound executor", func(t *testing.T) {
		exec := new(MockTxExecutor)
		bound := new(MockBoundExecutor)
		exec.On("BeginTx", mock.Anything).Return(bound, nil).Once()
		bound.On("Exec", mock.Anything, "DELETE FROM app_users WHERE  id = ?", vals(1)).Return(Result{RowsAffected: 1}, nil).Once()
		bound.On("Commit").Return(nil).Once()

		db := newTestDB(exec, WithPrefix("app_"))
		db.Where("pending", 1)
		tx, err := db.Begin(ctx)
		require.NoError(t, err)
		assert.True(t, tx.QB().Empty())

		_, err = tx.Where("id", 1).Delete(ctx, "users")
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		assert.ErrorIs(t, tx.Commit(), ErrTxDone)
		assert.ErrorIs(t, tx.Rollback(), ErrTxDone)

		assert.False(t, db.QB().Empty())
		exec.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
		bound.AssertExpectations(t)
	})
}

func TestTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit on success", func(t *testing.T) {
		exec := new(MockTxExecutor)
		bound := new(MockBoundExecutor)
		exec.On("BeginTx", mock.Anything).Return(bound, nil).Once()
		bound.On("Exec", mock.Anything, "UPDATE users SET name = ?, updated_at = ? WHERE  id = ?", vals("x", fixedNow.Unix(), 2)).
			Return(Result{RowsAffected: 1}, nil).Once()
		bound.On("Commit").Return(nil).Once()

		err := newTestDB(exec).Tx(ctx, func(tx *DB) error {
			_, err := tx.Where("id", 2).Update(ctx, "users", Data{{"name", "x"}})
			return err
		})
		require.NoError(t, err)
		bound.AssertExpectations(t)
		bound.AssertNotCalled(t, "Rollback")
	})

	t.Run("rollback on error", func(t *testing.T) {
		exec := new(MockTxExecutor)
		bound := new(MockBoundExecutor)
		exec.On("BeginTx", mock.Anything).Return(bound, nil).Once()
		bound.On("Rollback").Return(errors.New("rollback failed")).Once()

		failed := errors.New("step failed")
		err := newTestDB(exec).Tx(ctx, func(*DB) error { return failed })
		assert.Equal(t, failed, err)
		bound.AssertExpectations(t)
		bound.AssertNotCalled(t, "Commit")
	})
}
