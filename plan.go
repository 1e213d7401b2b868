package fluentsql

import (
	"fmt"
	"strings"
)

// StatementKind identifies the terminal statement a Statement was composed for.
type StatementKind int

const (
	StmtSelect StatementKind = iota
	StmtInsert
	StmtUpdate
	StmtDelete
	StmtRaw
)

func (k StatementKind) String() string {
	switch k {
	case StmtSelect:
		return "SELECT"
	case StmtInsert:
		return "INSERT"
	case StmtUpdate:
		return "UPDATE"
	case StmtDelete:
		return "DELETE"
	}
	return "RAW"
}

// Statement is composed SQL text with its parameters in placeholder order.
// It is handed to an Executor and never stored.
type Statement struct {
	Kind   StatementKind
	SQL    string
	Params []Value
}

// Args returns the parameters as driver arguments.
func (s Statement) Args() []any { return Args(s.Params) }

func (s Statement) clone() Statement {
	s.Params = append([]Value(nil), s.Params...)
	return s
}

// Field is one column assignment of an INSERT or UPDATE.
type Field struct {
	Column string
	Value  any
}

// Data is an ordered list of column assignments. Columns are written in
// slice order.
type Data []Field

// Set appends column, or replaces its value in place when already present.
func (d Data) Set(column string, value any) Data {
	for i := range d {
		if d[i].Column == column {
			d[i].Value = value
			return d
		}
	}
	return append(d, Field{Column: column, Value: value})
}

// DataOf pairs columns with values by position.
func DataOf(columns []string, values []any) (Data, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("%w: %d columns and %d values", ErrValidation, len(columns), len(values))
	}
	d := make(Data, 0, len(columns))
	for i, c := range columns {
		d = d.Set(c, values[i])
	}
	return d, nil
}

func (d Data) columns() []string {
	out := make([]string, len(d))
	for i, f := range d {
		out[i] = f.Column
	}
	return out
}

func (d Data) values() ([]Value, error) {
	out := make([]Value, len(d))
	for i, f := range d {
		v, err := ValueOf(f.Value)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Column, err)
		}
		out[i] = v
	}
	return out, nil
}

// BuildSelect composes SELECT <columns> FROM <table> followed by JOIN, WHERE,
// GROUP BY, HAVING, ORDER BY and LIMIT. No columns selects *.
func (qb *QB) BuildSelect(table string, columns ...string) (Statement, error) {
	if err := qb.begin(table); err != nil {
		return Statement{}, err
	}
	cols := "*"
	if len(columns) > 0 {
		cols = strings.Join(columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	writeJoins(&sb, &qb.params, qb.joins)
	writeConditions(&sb, &qb.params, "WHERE", qb.where)
	writeGroupBy(&sb, qb.groupBy)
	writeConditions(&sb, &qb.params, "HAVING", qb.having)
	writeOrderBy(&sb, &qb.orderBy)
	qb.limit.write(&sb)
	return qb.finish(StmtSelect, &sb)
}

// BuildCount composes SELECT COUNT(*) AS total over the pending JOIN and
// WHERE state. Grouping, ordering and limits are ignored.
func (qb *QB) BuildCount(table string) (Statement, error) {
	if err := qb.begin(table); err != nil {
		return Statement{}, err
	}
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) AS total FROM ")
	sb.WriteString(table)
	writeJoins(&sb, &qb.params, qb.joins)
	writeConditions(&sb, &qb.params, "WHERE", qb.where)
	return qb.finish(StmtSelect, &sb)
}

// BuildInsert composes INSERT INTO <table> (<columns>) VALUES (<placeholders>)
// with one parameter per column in data order.
func (qb *QB) BuildInsert(table string, data Data) (Statement, error) {
	if err := qb.begin(table); err != nil {
		return Statement{}, err
	}
	if len(data) == 0 {
		return Statement{}, ErrEmptyData
	}
	values, err := data.values()
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(data.columns(), ", "))
	sb.WriteString(") VALUES (")
	writePlaceholders(&sb, len(values))
	sb.WriteString(")")
	qb.params.add(values...)
	return qb.finish(StmtInsert, &sb)
}

// BuildUpdate composes UPDATE <table> SET col = ?, ... followed by WHERE,
// ORDER BY and LIMIT. SET parameters precede WHERE parameters.
func (qb *QB) BuildUpdate(table string, data Data) (Statement, error) {
	return qb.buildUpdate(table, data, "")
}

func (qb *QB) buildUpdate(table string, data Data, locator string) (Statement, error) {
	if err := qb.begin(table); err != nil {
		return Statement{}, err
	}
	if len(data) == 0 {
		return Statement{}, ErrEmptyData
	}
	values, err := data.values()
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	for i, f := range data {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Column)
		sb.WriteString(" = ?")
	}
	qb.params.add(values...)
	qb.writeFilter(&sb, table, locator)
	return qb.finish(StmtUpdate, &sb)
}

// BuildDelete composes DELETE FROM <table> followed by WHERE, ORDER BY and LIMIT.
func (qb *QB) BuildDelete(table string) (Statement, error) {
	return qb.buildDelete(table, "")
}

func (qb *QB) buildDelete(table, locator string) (Statement, error) {
	if err := qb.begin(table); err != nil {
		return Statement{}, err
	}
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(table)
	qb.writeFilter(&sb, table, locator)
	return qb.finish(StmtDelete, &sb)
}

// writeFilter renders WHERE, ORDER BY and LIMIT of an UPDATE or DELETE. With
// a row locator, ORDER BY and LIMIT move into a sub-select on the same table:
// WHERE <locator> IN (SELECT <locator> FROM <table> ...). The parameter order
// does not change.
func (qb *QB) writeFilter(sb *strings.Builder, table, locator string) {
	if locator == "" || (qb.orderBy.empty() && !qb.limit.set) {
		writeConditions(sb, &qb.params, "WHERE", qb.where)
		writeOrderBy(sb, &qb.orderBy)
		qb.limit.write(sb)
		return
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(locator)
	sb.WriteString(" IN (SELECT ")
	sb.WriteString(locator)
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	writeConditions(sb, &qb.params, "WHERE", qb.where)
	writeOrderBy(sb, &qb.orderBy)
	qb.limit.write(sb)
	sb.WriteString(")")
}

// begin checks the pending state before composing and clears the
// accumulator, so a builder can compose more than once.
func (qb *QB) begin(table string) error {
	if qb.err != nil {
		return qb.err
	}
	if strings.TrimSpace(table) == "" {
		return ErrEmptyTable
	}
	qb.params.reset()
	return nil
}

// finish pairs the SQL text with the accumulated parameters. A placeholder
// count that differs from the accumulator length is a composer bug; the
// statement is returned for diagnostics together with the error.
func (qb *QB) finish(kind StatementKind, sb *strings.Builder) (Statement, error) {
	stmt := Statement{Kind: kind, SQL: sb.String(), Params: qb.params.snapshot()}
	if n := countPlaceholders(stmt.SQL); n != len(stmt.Params) {
		return stmt, fmt.Errorf("%w: %d placeholders, %d parameters in %q", ErrParameterCountMismatch, n, len(stmt.Params), stmt.SQL)
	}
	return stmt, nil
}
