package fluentsql

import (
	"errors"
	"strings"
)

// ErrInvalidOperator is returned when an operator is unknown or its operand
// has the wrong shape (a list for a scalar operator, a scalar for IN, a
// BETWEEN without exactly two bounds).
var ErrInvalidOperator = errors.New("invalid operator")

// ErrInvalidJoinKind is returned by Join when the join type is not allowed.
var ErrInvalidJoinKind = errors.New("invalid join kind")

// ErrInvalidOrderDirection is returned by OrderBy for anything but ASC or DESC.
var ErrInvalidOrderDirection = errors.New("invalid order direction")

// ErrEmptyInClause is returned when IN or NOT IN receives an empty list.
var ErrEmptyInClause = errors.New("unsupported operand: empty IN list")

// ErrParameterCountMismatch means a composed statement carries a different
// number of placeholders and parameters. The statement is never executed.
var ErrParameterCountMismatch = errors.New("placeholder and parameter count mismatch")

// ErrExecution matches every *ExecutionError.
var ErrExecution = errors.New("execution failure")

// ErrConnection is returned when the backend connection cannot be opened.
var ErrConnection = errors.New("connection failure")

// ErrEmptyTable is returned when a terminal call receives an empty table name.
var ErrEmptyTable = errors.New("empty table name")

// ErrEmptyData is returned by Insert and Update without any column.
var ErrEmptyData = errors.New("no columns to write")

// ErrValidation is returned when a model's columns and values disagree.
var ErrValidation = errors.New("validation error")

// ErrNotFound is returned by GetOne and GetValue when no row matches.
var ErrNotFound = errors.New("record not found")

// ErrNoTxSupport is returned by DB.Begin when the executor does not implement TxExecutor.
var ErrNoTxSupport = errors.New("transaction not supported")

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// ErrUnsupportedValue is returned when a Go value has no Value representation.
var ErrUnsupportedValue = errors.New("unsupported value type")

// ExecutionError carries the backend's own diagnostic for a failed statement.
type ExecutionError struct {
	Query      string
	Diagnostic string
	Err        error
}

func (e *ExecutionError) Error() string {
	var sb strings.Builder
	sb.WriteString("execution failure: ")
	if e.Diagnostic != "" {
		sb.WriteString(e.Diagnostic)
	} else if e.Err != nil {
		sb.WriteString(e.Err.Error())
	}
	if e.Query != "" {
		sb.WriteString(" [query: ")
		sb.WriteString(e.Query)
		sb.WriteString("]")
	}
	return sb.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

// asExecutionError wraps err unless it already is an ExecutionError.
func asExecutionError(query string, err error) error {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		if ee.Query == "" {
			ee.Query = query
		}
		return err
	}
	return &ExecutionError{Query: query, Diagnostic: err.Error(), Err: err}
}
