package fluentsql

import "context"

// Executor prepares and runs composed statements against the backend.
// Arguments bind by position to the ? placeholders of query, in order.
// Implementations report backend failures as *ExecutionError so the native
// diagnostic reaches the caller.
type Executor interface {
	Query(ctx context.Context, query string, args ...Value) ([]Row, error)
	Exec(ctx context.Context, query string, args ...Value) (Result, error)
}

// Result is the outcome of a statement that returns no rows.
type Result struct {
	RowsAffected int64
	LastInsertID Value
}

// Row is one result row keyed by column name.
type Row map[string]Value

// Get returns the value of column, or Null when the row has no such column.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// RowScanner is implemented by models that can load themselves from a Row.
type RowScanner interface {
	Scan(r Row) error
}

// ScanRows loads every row into a model created by factory.
func ScanRows[T RowScanner](rows []Row, factory func() T) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		m := factory()
		if err := m.Scan(r); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
