package fluentsql

import "context"

// InsertModel inserts m. Zero auto-increment columns are left to the backend;
// with WithReturning the primary key column is the one returned.
func (db *DB) InsertModel(ctx context.Context, m Model) (Value, error) {
	if err := checkModel(m); err != nil {
		db.reset()
		return Null(), db.reject(err)
	}
	data, pk, _, err := modelData(m, insertFilter(m))
	if err != nil {
		db.reset()
		return Null(), db.reject(err)
	}
	returning := db.returning
	if returning != "" && pk != "" {
		returning = pk
	}
	return db.insert(ctx, m.TableName(), data, returning)
}

// UpdateModel writes every column of m but its primary key. Without pending
// WHERE conditions the row is matched by primary key.
func (db *DB) UpdateModel(ctx context.Context, m Model) (int64, error) {
	if err := checkModel(m); err != nil {
		db.reset()
		return 0, db.reject(err)
	}
	data, pk, pkValue, err := modelData(m, func(_ string, pk bool, _ Value) bool { return !pk })
	if err != nil {
		db.reset()
		return 0, db.reject(err)
	}
	if pk != "" && len(db.qb.where) == 0 {
		db.qb.Where(pk, pkValue)
	}
	return db.Update(ctx, m.TableName(), data)
}

// DeleteModel deletes the row of m matched by primary key, or by the pending
// WHERE conditions when there are any.
func (db *DB) DeleteModel(ctx context.Context, m Model) (int64, error) {
	_, pk, pkValue, err := modelData(m, func(string, bool, Value) bool { return false })
	if err != nil {
		db.reset()
		return 0, db.reject(err)
	}
	if len(db.qb.where) == 0 {
		if pk == "" {
			db.reset()
			return 0, db.reject(ErrValidation)
		}
		db.qb.Where(pk, pkValue)
	}
	return db.Delete(ctx, m.TableName())
}

// ReadOne runs the pending SELECT with LIMIT 1 and scans the row into a model
// created by factory. It returns ErrNotFound when nothing matches.
func ReadOne[T interface {
	Model
	RowScanner
}](ctx context.Context, db *DB, factory func() T) (T, error) {
	m := factory()
	row, err := db.GetOne(ctx, m.TableName(), m.Columns()...)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := m.Scan(row); err != nil {
		var zero T
		return zero, err
	}
	return m, nil
}

// ReadAll runs the pending SELECT and scans every row.
func ReadAll[T interface {
	Model
	RowScanner
}](ctx context.Context, db *DB, factory func() T) ([]T, error) {
	m := factory()
	rows, err := db.Get(ctx, m.TableName(), m.Columns()...)
	if err != nil {
		return nil, err
	}
	return ScanRows(rows, factory)
}
