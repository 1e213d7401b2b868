package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tinywasm/fluentsql"
)

// preparer is satisfied by *sqlx.DB and *sqlx.Tx.
type preparer interface {
	PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
}

func queryRows(ctx context.Context, p preparer, query string, args []fluentsql.Value) ([]fluentsql.Row, error) {
	stmt, err := p.PreparexContext(ctx, fluentsql.Numbered(query))
	if err != nil {
		return nil, wrapError(query, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryxContext(ctx, fluentsql.Args(args)...)
	if err != nil {
		return nil, wrapError(query, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, wrapError(query, err)
	}
	return out, nil
}

func execStatement(ctx context.Context, p preparer, query string, args []fluentsql.Value) (fluentsql.Result, error) {
	stmt, err := p.PreparexContext(ctx, fluentsql.Numbered(query))
	if err != nil {
		return fluentsql.Result{}, wrapError(query, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, fluentsql.Args(args)...)
	if err != nil {
		return fluentsql.Result{}, wrapError(query, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fluentsql.Result{}, wrapError(query, err)
	}
	// PostgreSQL has no last insert id; use RETURNING.
	return fluentsql.Result{RowsAffected: affected, LastInsertID: fluentsql.Null()}, nil
}

func scanRows(rows *sqlx.Rows) ([]fluentsql.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	var out []fluentsql.Row
	for rows.Next() {
		raw := make(map[string]interface{}, len(cols))
		if err := rows.MapScan(raw); err != nil {
			return nil, err
		}
		row := make(fluentsql.Row, len(cols))
		for i, col := range cols {
			row[col] = toValue(raw[col], types[i].DatabaseTypeName())
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// toValue converts a scanned column. Only BYTEA bytes stay binary; drivers
// return other text-like types as bytes too.
func toValue(x interface{}, dbType string) fluentsql.Value {
	if b, ok := x.([]byte); ok {
		if strings.EqualFold(dbType, "BYTEA") {
			return fluentsql.Binary(b)
		}
		return fluentsql.Text(string(b))
	}
	v, err := fluentsql.ValueOf(x)
	if err != nil {
		return fluentsql.Text(fmt.Sprint(x))
	}
	return v
}

// wrapError keeps the driver error reachable and extracts its diagnostic.
func wrapError(query string, err error) error {
	return &fluentsql.ExecutionError{Query: query, Diagnostic: diagnostic(err), Err: err}
}

func diagnostic(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Sprintf("%s (SQLSTATE %s)", pqErr.Message, pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Sprintf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
	}
	return err.Error()
}

// IsUniqueViolation reports whether err is a unique_violation (23505).
func IsUniqueViolation(err error) bool {
	return sqlState(err) == "23505"
}

// IsForeignKeyViolation reports whether err is a foreign_key_violation (23503).
func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == "23503"
}

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
