package fluentsql

import "context"

// Paginate returns page (1-based) of the pending SELECT, PageLimit rows per
// page. It then counts the rows matched by the same JOIN and WHERE state and
// sets TotalCount and TotalPages. Count reports the rows of the page.
func (db *DB) Paginate(ctx context.Context, table string, page int, columns ...string) ([]Row, error) {
	size := db.pageLimit
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}

	counting := db.qb.Clone()
	rows, err := db.LimitOffset(offset, size).Get(ctx, table, columns...)
	if err != nil {
		return nil, err
	}
	returned := db.count

	*db.qb = *counting
	total, err := db.CountRows(ctx, table)
	if err != nil {
		return nil, err
	}
	db.count = returned
	db.totalCount = total
	db.totalPages = (total + int64(size) - 1) / int64(size)
	return rows, nil
}
