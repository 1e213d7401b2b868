package fluentsql

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tinywasm/fluentsql/internal/log"
)

const (
	// CreatedAtColumn and UpdatedAtColumn receive unix timestamps on every
	// Insert, and UpdatedAtColumn on every Update.
	CreatedAtColumn = "created_at"
	UpdatedAtColumn = "updated_at"

	DefaultPageLimit = 20
)

// DB couples a builder with an Executor. Fluent calls accumulate state, a
// terminal call (Get, GetOne, GetValue, Insert, Update, Delete, RawQuery...)
// composes and runs exactly one statement and then resets the state, whether
// it succeeded or not. Diagnostics (LastQuery, LastError, Count...) survive
// the reset.
//
// A DB is one fluent chain at a time and is not safe for concurrent use; use
// Session to get an independent builder over the same executor.
type DB struct {
	exec      Executor
	qb        *QB
	prefix    string
	returning string
	locator   string
	pageLimit int
	debug     bool
	now       func() time.Time

	lastQuery  string
	lastParams []Value
	lastErr    error
	count      int64
	totalCount int64
	totalPages int64
	insertID   Value
}

// Option configures a DB.
type Option func(*DB)

// WithPrefix prepends prefix to every table name.
func WithPrefix(prefix string) Option {
	return func(db *DB) { db.prefix = prefix }
}

// WithReturning makes Insert append `RETURNING column` and read the new id
// from the returned row. Use it for backends without a last-insert-id.
func WithReturning(column string) Option {
	return func(db *DB) { db.returning = strings.TrimSpace(column) }
}

// WithRowLocator names a column that identifies a row, such as PostgreSQL's
// ctid. When set, an UPDATE or DELETE with ORDER BY or LIMIT is composed as
// `WHERE <column> IN (SELECT <column> FROM <table> WHERE ... ORDER BY ... LIMIT n)`
// for backends that reject ORDER BY and LIMIT on those statements.
func WithRowLocator(column string) Option {
	return func(db *DB) { db.locator = strings.TrimSpace(column) }
}

// WithPageLimit sets the Paginate page size. Non-positive values are ignored.
func WithPageLimit(n int) Option {
	return func(db *DB) {
		if n > 0 {
			db.pageLimit = n
		}
	}
}

// WithDebug logs every composed statement.
func WithDebug(on bool) Option {
	return func(db *DB) { db.debug = on }
}

// WithClock replaces time.Now for the generated timestamp columns.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		if now != nil {
			db.now = now
		}
	}
}

// New creates a DB over exec.
func New(exec Executor, opts ...Option) *DB {
	db := &DB{
		exec:      exec,
		qb:        NewQB(),
		pageLimit: DefaultPageLimit,
		now:       time.Now,
		insertID:  Null(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Session returns a DB with the same executor and settings, an empty builder
// and fresh diagnostics.
func (db *DB) Session() *DB {
	s := &DB{
		exec:      db.exec,
		qb:        NewQB(),
		prefix:    db.prefix,
		returning: db.returning,
		locator:   db.locator,
		pageLimit: db.pageLimit,
		debug:     db.debug,
		now:       db.now,
		insertID:  Null(),
	}
	return s
}

// SetPrefix changes the table prefix.
func (db *DB) SetPrefix(prefix string) *DB {
	db.prefix = prefix
	return db
}

// SetPageLimit changes the Paginate page size. Non-positive values are ignored.
func (db *DB) SetPageLimit(n int) *DB {
	if n > 0 {
		db.pageLimit = n
	}
	return db
}

func (db *DB) PageLimit() int { return db.pageLimit }

// QB returns the pending builder state.
func (db *DB) QB() *QB { return db.qb }

// Executor returns the underlying executor instance.
func (db *DB) Executor() Executor { return db.exec }

// Close closes the underlying executor if it supports it.
func (db *DB) Close() error {
	if c, ok := db.exec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (db *DB) Where(field string, value any) *DB {
	db.qb.Where(field, value)
	return db
}

func (db *DB) WhereOp(field string, op Operator, value any) *DB {
	db.qb.WhereOp(field, op, value)
	return db
}

func (db *DB) OrWhere(field string, value any) *DB {
	db.qb.OrWhere(field, value)
	return db
}

func (db *DB) OrWhereOp(field string, op Operator, value any) *DB {
	db.qb.OrWhereOp(field, op, value)
	return db
}

func (db *DB) Filter(conds ...Condition) *DB {
	db.qb.Filter(conds...)
	return db
}

func (db *DB) Having(field string, value any) *DB {
	db.qb.Having(field, value)
	return db
}

func (db *DB) HavingOp(field string, op Operator, value any) *DB {
	db.qb.HavingOp(field, op, value)
	return db
}

func (db *DB) OrHaving(field string, value any) *DB {
	db.qb.OrHaving(field, value)
	return db
}

func (db *DB) OrHavingOp(field string, op Operator, value any) *DB {
	db.qb.OrHavingOp(field, op, value)
	return db
}

// Join adds a JOIN on a table. The table receives the configured prefix.
func (db *DB) Join(kind, table, predicate string) *DB {
	db.qb.Join(kind, db.tableName(table), predicate)
	return db
}

func (db *DB) JoinSub(kind string, sub Statement, alias, predicate string) *DB {
	db.qb.JoinSub(kind, sub, alias, predicate)
	return db
}

func (db *DB) OrderBy(column, dir string) *DB {
	db.qb.OrderBy(column, dir)
	return db
}

func (db *DB) GroupBy(columns ...string) *DB {
	db.qb.GroupBy(columns...)
	return db
}

func (db *DB) Limit(count int) *DB {
	db.qb.Limit(count)
	return db
}

func (db *DB) LimitOffset(offset, count int) *DB {
	db.qb.LimitOffset(offset, count)
	return db
}

// Err returns the first construction error of the pending chain.
func (db *DB) Err() error { return db.qb.Err() }

// Reset drops the pending state without running anything.
func (db *DB) Reset() *DB {
	db.qb.Reset()
	return db
}

// Dump returns a readable dump of the pending builder state.
func (db *DB) Dump() string { return log.Dump(db.qb) }

// LastQuery returns the SQL text of the last terminal call.
func (db *DB) LastQuery() string { return db.lastQuery }

// LastParams returns the parameters of the last terminal call.
func (db *DB) LastParams() []Value { return append([]Value(nil), db.lastParams...) }

// LastError returns the error of the last terminal call, nil on success.
func (db *DB) LastError() error { return db.lastErr }

// Count returns the rows returned or affected by the last terminal call.
func (db *DB) Count() int64 { return db.count }

// TotalCount and TotalPages are set by Paginate.
func (db *DB) TotalCount() int64 { return db.totalCount }
func (db *DB) TotalPages() int64 { return db.totalPages }

// InsertID returns the identifier produced by the last Insert.
func (db *DB) InsertID() Value { return db.insertID }

// Get runs SELECT <columns> FROM <table> with the pending state.
func (db *DB) Get(ctx context.Context, table string, columns ...string) ([]Row, error) {
	defer db.reset()
	stmt, err := db.record(db.qb.BuildSelect(db.tableName(table), columns...))
	if err != nil {
		return nil, err
	}
	rows, err := db.query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	db.count = int64(len(rows))
	return rows, nil
}

// GetOne returns the first matching row, or ErrNotFound.
func (db *DB) GetOne(ctx context.Context, table string, columns ...string) (Row, error) {
	db.qb.limit = db.qb.limit.first()
	rows, err := db.Get(ctx, table, columns...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// GetValue returns column of the first matching row, or ErrNotFound.
func (db *DB) GetValue(ctx context.Context, table, column string) (Value, error) {
	db.qb.limit = db.qb.limit.first()
	rows, err := db.Get(ctx, table, column+" AS retval")
	if err != nil {
		return Null(), err
	}
	if len(rows) == 0 {
		return Null(), ErrNotFound
	}
	return rows[0].Get("retval"), nil
}

// GetValues returns column of up to limit matching rows; limit <= 0 means all.
func (db *DB) GetValues(ctx context.Context, table, column string, limit int) ([]Value, error) {
	if limit > 0 {
		db.qb.Limit(limit)
	}
	rows, err := db.Get(ctx, table, column+" AS retval")
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(rows))
	for i, r := range rows {
		out[i] = r.Get("retval")
	}
	return out, nil
}

// Insert writes one row and returns its identifier. created_at and
// updated_at are appended after the given columns.
func (db *DB) Insert(ctx context.Context, table string, data Data) (Value, error) {
	return db.insert(ctx, table, data, db.returning)
}

func (db *DB) insert(ctx context.Context, table string, data Data, returning string) (Value, error) {
	defer db.reset()
	if len(data) == 0 {
		return Null(), db.reject(ErrEmptyData)
	}
	now := db.now().Unix()
	full := append(Data(nil), data...).Set(CreatedAtColumn, now).Set(UpdatedAtColumn, now)

	stmt, err := db.record(db.qb.BuildInsert(db.tableName(table), full))
	if err != nil {
		return Null(), err
	}

	id := Null()
	if returning != "" {
		stmt.SQL += " RETURNING " + returning
		db.lastQuery = stmt.SQL
		rows, err := db.query(ctx, stmt)
		if err != nil {
			return Null(), err
		}
		if len(rows) > 0 {
			id = rows[0].Get(returning)
		}
		db.count = int64(len(rows))
	} else {
		res, err := db.execute(ctx, stmt)
		if err != nil {
			return Null(), err
		}
		id = res.LastInsertID
		db.count = res.RowsAffected
	}
	db.insertID = id
	return id, nil
}

// Update runs UPDATE <table> SET ... with the pending WHERE, ORDER BY and
// LIMIT. updated_at is appended as the last SET column.
func (db *DB) Update(ctx context.Context, table string, data Data) (int64, error) {
	defer db.reset()
	if len(data) == 0 {
		return 0, db.reject(ErrEmptyData)
	}
	full := append(Data(nil), data...).Set(UpdatedAtColumn, db.now().Unix())

	stmt, err := db.record(db.qb.buildUpdate(db.tableName(table), full, db.locator))
	if err != nil {
		return 0, err
	}
	res, err := db.execute(ctx, stmt)
	if err != nil {
		return 0, err
	}
	db.count = res.RowsAffected
	return res.RowsAffected, nil
}

// Delete runs DELETE FROM <table> with the pending WHERE, ORDER BY and LIMIT.
func (db *DB) Delete(ctx context.Context, table string) (int64, error) {
	defer db.reset()
	stmt, err := db.record(db.qb.buildDelete(db.tableName(table), db.locator))
	if err != nil {
		return 0, err
	}
	res, err := db.execute(ctx, stmt)
	if err != nil {
		return 0, err
	}
	db.count = res.RowsAffected
	return res.RowsAffected, nil
}

// CountRows returns COUNT(*) of table under the pending JOIN and WHERE state.
func (db *DB) CountRows(ctx context.Context, table string) (int64, error) {
	defer db.reset()
	stmt, err := db.record(db.qb.BuildCount(db.tableName(table)))
	if err != nil {
		return 0, err
	}
	rows, err := db.query(ctx, stmt)
	if err != nil {
		return 0, err
	}
	db.count = int64(len(rows))
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Get("total").Int64(), nil
}

// TableExists reports whether table (prefixed) is listed in
// information_schema.tables. A schema-qualified name is matched on both parts.
// Pending builder state is discarded.
func (db *DB) TableExists(ctx context.Context, table string) (bool, error) {
	defer db.reset()
	schema, name, qualified := strings.Cut(strings.TrimSpace(table), ".")
	if !qualified {
		schema, name = "", schema
	}
	if name == "" {
		return false, db.reject(ErrEmptyTable)
	}

	qb := NewQB()
	if schema != "" {
		qb.Where("table_schema", schema)
	}
	qb.Where("table_name", db.prefix+name)
	stmt, err := db.record(qb.BuildCount("information_schema.tables"))
	if err != nil {
		return false, err
	}
	rows, err := db.query(ctx, stmt)
	if err != nil {
		return false, err
	}
	db.count = int64(len(rows))
	return len(rows) > 0 && rows[0].Get("total").Int64() > 0, nil
}

// RawQuery runs caller-supplied SQL and returns its rows. Pending builder
// state is discarded.
func (db *DB) RawQuery(ctx context.Context, query string, args ...any) ([]Row, error) {
	defer db.reset()
	stmt, err := db.record(rawStatement(query, args))
	if err != nil {
		return nil, err
	}
	rows, err := db.query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	db.count = int64(len(rows))
	return rows, nil
}

// RawExec runs caller-supplied SQL that returns no rows.
func (db *DB) RawExec(ctx context.Context, query string, args ...any) (int64, error) {
	defer db.reset()
	stmt, err := db.record(rawStatement(query, args))
	if err != nil {
		return 0, err
	}
	res, err := db.execute(ctx, stmt)
	if err != nil {
		return 0, err
	}
	db.count = res.RowsAffected
	return res.RowsAffected, nil
}

func rawStatement(query string, args []any) (Statement, error) {
	stmt := Statement{Kind: StmtRaw, SQL: query}
	if strings.TrimSpace(query) == "" {
		return stmt, fmt.Errorf("%w: empty query", ErrValidation)
	}
	for i, a := range args {
		v, err := ValueOf(a)
		if err != nil {
			return stmt, fmt.Errorf("argument %d: %w", i+1, err)
		}
		stmt.Params = append(stmt.Params, v)
	}
	if n := countPlaceholders(query); n != len(stmt.Params) {
		return stmt, fmt.Errorf("%w: %d placeholders, %d arguments", ErrParameterCountMismatch, n, len(stmt.Params))
	}
	return stmt, nil
}

func (db *DB) tableName(table string) string {
	if strings.TrimSpace(table) == "" {
		return ""
	}
	return db.prefix + table
}

// record stores the statement for LastQuery before it runs.
func (db *DB) record(stmt Statement, err error) (Statement, error) {
	db.lastErr = nil
	db.lastQuery = stmt.SQL
	db.lastParams = stmt.Params
	db.count = 0
	if err != nil {
		return stmt, db.fail(err)
	}
	if db.debug {
		log.Debug("%s %s %v", stmt.Kind, stmt.SQL, stmt.Params)
	}
	return stmt, nil
}

func (db *DB) query(ctx context.Context, stmt Statement) ([]Row, error) {
	rows, err := db.exec.Query(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, db.executionFailed(stmt, err)
	}
	return rows, nil
}

func (db *DB) execute(ctx context.Context, stmt Statement) (Result, error) {
	res, err := db.exec.Exec(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return Result{}, db.executionFailed(stmt, err)
	}
	return res, nil
}

func (db *DB) executionFailed(stmt Statement, err error) error {
	err = asExecutionError(stmt.SQL, err)
	log.Error("%s failed: %v", stmt.Kind, err)
	return db.fail(err)
}

// reject records a call that failed before a statement was composed.
func (db *DB) reject(err error) error {
	_, err = db.record(Statement{}, err)
	return err
}

func (db *DB) fail(err error) error {
	db.lastErr = err
	return err
}

// reset clears statement state; diagnostics are kept.
func (db *DB) reset() {
	db.qb.Reset()
}
