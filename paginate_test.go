package fluentsql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	ctx := context.Background()

	t.Run("page and totals", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec)
		page := []Row{{"id": Int(41)}, {"id": Int(42)}, {"id": Int(43)}, {"id": Int(44)}, {"id": Int(45)}}
		exec.On("Query", mock.Anything, "SELECT id FROM users WHERE  age > ? ORDER BY id ASC LIMIT 20 OFFSET 40", vals(18)).Return(page, nil).Once()
		exec.On("Query", mock.Anything, "SELECT COUNT(*) AS total FROM users WHERE  age > ?", vals(18)).Return([]Row{{"total": Int(45)}}, nil).Once()

		rows, err := db.Filter(Gt("age", 18)).OrderBy("id", "asc").Paginate(ctx, "users", 3, "id")
		require.NoError(t, err)
		assert.Equal(t, page, rows)
		assert.Equal(t, int64(5), db.Count())
		assert.Equal(t, int64(45), db.TotalCount())
		assert.Equal(t, int64(3), db.TotalPages())
		assert.Equal(t, "SELECT COUNT(*) AS total FROM users WHERE  age > ?", db.LastQuery())
		assert.True(t, db.QB().Empty())
		exec.AssertExpectations(t)
	})

	t.Run("page below one starts at zero", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec, WithPageLimit(10))
		exec.On("Query", mock.Anything, "SELECT * FROM users LIMIT 10 OFFSET 0", vals()).Return([]Row{}, nil).Once()
		exec.On("Query", mock.Anything, "SELECT COUNT(*) AS total FROM users", vals()).Return([]Row{{"total": Int(0)}}, nil).Once()

		rows, err := db.Paginate(ctx, "users", 0)
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, int64(0), db.TotalPages())
		exec.AssertExpectations(t)
	})

	t.Run("joins reach the count", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec, WithPageLimit(2))
		exec.On("Query", mock.Anything, "SELECT u.id FROM users u INNER JOIN orders o ON o.user_id = u.id WHERE  o.paid = ? LIMIT 2 OFFSET 2", vals(true)).Return([]Row{{"id": Int(3)}}, nil).Once()
		exec.On("Query", mock.Anything, "SELECT COUNT(*) AS total FROM users u INNER JOIN orders o ON o.user_id = u.id WHERE  o.paid = ?", vals(true)).Return([]Row{{"total": Int(3)}}, nil).Once()

		_, err := db.Join("inner", "orders o", "o.user_id = u.id").Where("o.paid", true).Paginate(ctx, "users u", 2, "u.id")
		require.NoError(t, err)
		assert.Equal(t, int64(2), db.TotalPages())
		assert.Equal(t, int64(1), db.Count())
		exec.AssertExpectations(t)
	})

	t.Run("select failure skips the count", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec)
		exec.On("Query", mock.Anything, "SELECT * FROM users LIMIT 20 OFFSET 0", vals()).Return(nil, errors.New("down")).Once()

		_, err := db.Paginate(ctx, "users", 1)
		assert.ErrorIs(t, err, ErrExecution)
		assert.True(t, db.QB().Empty())
		exec.AssertNumberOfCalls(t, "Query", 1)
	})
}

func TestPaginateKeepsBuilder(t *testing.T) {
	ctx := context.Background()
	exec := new(MockExecutor)
	db := newTestDB(exec)
	exec.On("Query", mock.Anything, "SELECT * FROM users WHERE  a = ? LIMIT 20 OFFSET 0", vals(1)).Return([]Row{}, nil).Once()
	exec.On("Query", mock.Anything, "SELECT COUNT(*) AS total FROM users WHERE  a = ?", vals(1)).Return([]Row{{"total": Int(0)}}, nil).Once()

	qb := db.QB()
	_, err := db.Where("a", 1).Paginate(ctx, "users", 1)
	require.NoError(t, err)
	assert.Same(t, qb, db.QB())

	qb.Where("b", 2)
	assert.Len(t, db.QB().Conditions(), 1)
	exec.AssertExpectations(t)
}
