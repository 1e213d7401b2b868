package fluentsql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// auditEntry has no primary key.
type auditEntry struct {
	Action string
}

func (a *auditEntry) TableName() string { return "audit" }
func (a *auditEntry) Columns() []string { return []string{"action"} }
func (a *auditEntry) Values() []any     { return []any{a.Action} }

// brokenModel declares more columns than values.
type brokenModel struct{ table string }

func (b *brokenModel) TableName() string { return b.table }
func (b *brokenModel) Columns() []string { return []string{"a", "b"} }
func (b *brokenModel) Values() []any     { return []any{1} }

func TestInsertModel(t *testing.T) {
	ctx := context.Background()
	now := fixedNow.Unix()

	t.Run("zero key is left to the backend", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec)
		exec.On("Exec", mock.Anything, "INSERT INTO users (name, age, created_at, updated_at) VALUES (?, ?, ?, ?)", vals("Ann", 30, now, now)).
			Return(Result{RowsAffected: 1, LastInsertID: Int(11)}, nil).Once()

		id, err := db.InsertModel(ctx, &testUser{Name: "Ann", Age: 30})
		require.NoError(t, err)
		assert.Equal(t, Int(11), id)
		exec.AssertExpectations(t)
	})

	t.Run("explicit key is written", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec)
		exec.On("Exec", mock.Anything, "INSERT INTO users (id, name, age, created_at, updated_at) VALUES (?, ?, ?, ?, ?)", vals(int64(7), "Ann", 30, now, now)).
			Return(Result{RowsAffected: 1}, nil).Once()

		_, err := db.InsertModel(ctx, &testUser{ID: 7, Name: "Ann", Age: 30})
		require.NoError(t, err)
		exec.AssertExpectations(t)
	})

	t.Run("returning uses the key column", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec, WithReturning("oid"))
		exec.On("Query", mock.Anything, "INSERT INTO users (name, age, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id", vals("Ann", 30, now, now)).
			Return([]Row{{"id": Int(12)}}, nil).Once()

		id, err := db.InsertModel(ctx, &testUser{Name: "Ann", Age: 30})
		require.NoError(t, err)
		assert.Equal(t, Int(12), id)
		exec.AssertExpectations(t)
	})

	t.Run("invalid model", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec)
		db.Where("stale", 1)

		_, err := db.InsertModel(ctx, &brokenModel{table: "t"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.True(t, db.QB().Empty())

		_, err = db.InsertModel(ctx, &brokenModel{})
		assert.ErrorIs(t, err, ErrEmptyTable)
		assert.ErrorIs(t, db.LastError(), ErrEmptyTable)
	})
}

func TestUpdateModel(t *testing.T) {
	ctx := context.Background()
	exec := new(MockExecutor)
	db := newTestDB(exec)

	exec.On("Exec", mock.Anything, "UPDATE users SET name = ?, age = ?, updated_at = ? WHERE  id = ?", vals("Bo", 40, fixedNow.Unix(), int64(7))).
		Return(Result{RowsAffected: 1}, nil).Once()
	exec.On("Exec", mock.Anything, "UPDATE users SET name = ?, age = ?, updated_at = ? WHERE  age < ?", vals("Bo", 40, fixedNow.Unix(), 18)).
		Return(Result{RowsAffected: 6}, nil).Once()

	n, err := db.UpdateModel(ctx, &testUser{ID: 7, Name: "Bo", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = db.Filter(Lt("age", 18)).UpdateModel(ctx, &testUser{ID: 7, Name: "Bo", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	exec.AssertExpectations(t)
}

func TestDeleteModel(t *testing.T) {
	ctx := context.Background()
	exec := new(MockExecutor)
	db := newTestDB(exec)

	exec.On("Exec", mock.Anything, "DELETE FROM users WHERE  id = ?", vals(int64(7))).Return(Result{RowsAffected: 1}, nil).Once()
	exec.On("Exec", mock.Anything, "DELETE FROM audit WHERE  action = ?", vals("login")).Return(Result{RowsAffected: 2}, nil).Once()

	n, err := db.DeleteModel(ctx, &testUser{ID: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = db.Where("action", "login").DeleteModel(ctx, &auditEntry{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = db.DeleteModel(ctx, &auditEntry{Action: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	exec.AssertExpectations(t)
}

func TestReadOneAndAll(t *testing.T) {
	ctx := context.Background()
	exec := new(MockExecutor)
	db := newTestDB(exec)
	newUser := func() *testUser { return &testUser{} }

	exec.On("Query", mock.Anything, "SELECT id, name, age FROM users WHERE  id = ? LIMIT 1", vals(7)).
		Return([]Row{{"id": Int(7), "name": Text("Ann"), "age": Int(30)}}, nil).Once()
	u, err := ReadOne(ctx, db.Where("id", 7), newUser)
	require.NoError(t, err)
	assert.Equal(t, &testUser{ID: 7, Name: "Ann", Age: 30}, u)

	exec.On("Query", mock.Anything, "SELECT id, name, age FROM users WHERE  id = ? LIMIT 1", vals(8)).Return([]Row{}, nil).Once()
	u, err = ReadOne(ctx, db.Where("id", 8), newUser)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, u)

	exec.On("Query", mock.Anything, "SELECT id, name, age FROM users ORDER BY id ASC", vals()).
		Return([]Row{{"id": Int(1), "name": Text("a")}, {"id": Int(2), "name": Text("b"), "age": Text("5")}}, nil).Once()
	all, err := ReadAll(ctx, db.OrderBy("id", "asc"), newUser)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, 5, all[1].Age)

	exec.On("Query", mock.Anything, "SELECT id, name, age FROM users", vals()).Return(nil, errors.New("down")).Once()
	_, err = ReadAll(ctx, db, newUser)
	assert.ErrorIs(t, err, ErrExecution)
	exec.AssertExpectations(t)
}

func TestScanRowsError(t *testing.T) {
	failing := errors.New("bad row")
	_, err := ScanRows([]Row{{}}, func() *scanFailer { return &scanFailer{err: failing} })
	assert.ErrorIs(t, err, failing)
}

type scanFailer struct{ err error }

func (s *scanFailer) Scan(Row) error { return s.err }

// account has a serial column that is not its key, and a required name.
type account struct {
	Code string
	Seq  int64
	Name string
}

func (a *account) TableName() string       { return "accounts" }
func (a *account) PrimaryKey() string      { return "code" }
func (a *account) Columns() []string       { return []string{"code", "seq", "name"} }
func (a *account) Values() []any           { return []any{a.Code, a.Seq, a.Name} }
func (a *account) AutoIncrement() []string { return []string{"seq"} }

func (a *account) Validate() error {
	if a.Name == "" {
		return Required("name")
	}
	return nil
}

func TestModelHooks(t *testing.T) {
	ctx := context.Background()
	now := fixedNow.Unix()

	t.Run("auto-increment columns", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec)
		exec.On("Exec", mock.Anything, "INSERT INTO accounts (code, name, created_at, updated_at) VALUES (?, ?, ?, ?)", vals("", "x", now, now)).
			Return(Result{RowsAffected: 1}, nil).Once()
		exec.On("Exec", mock.Anything, "INSERT INTO accounts (code, seq, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)", vals("k", 4, "x", now, now)).
			Return(Result{RowsAffected: 1}, nil).Once()

		_, err := db.InsertModel(ctx, &account{Name: "x"})
		require.NoError(t, err)
		_, err = db.InsertModel(ctx, &account{Code: "k", Seq: 4, Name: "x"})
		require.NoError(t, err)
		exec.AssertExpectations(t)
	})

	t.Run("validation runs before composing", func(t *testing.T) {
		exec := new(MockExecutor)
		db := newTestDB(exec)

		_, err := db.InsertModel(ctx, &account{Code: "k"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "name is required")

		_, err = db.UpdateModel(ctx, &account{Code: "k"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, db.LastQuery())

		exec.On("Exec", mock.Anything, "DELETE FROM accounts WHERE  code = ?", vals("k")).Return(Result{RowsAffected: 1}, nil).Once()
		_, err = db.DeleteModel(ctx, &account{Code: "k"})
		require.NoError(t, err)
		exec.AssertExpectations(t)
	})
}
