package fluentsql

import (
	"fmt"
	"strings"
)

// Connector joins a condition to the one before it.
type Connector string

const (
	ConnectorNone Connector = ""
	ConnectorAnd  Connector = "AND"
	ConnectorOr   Connector = "OR"
)

// Operator is a comparison operator of a WHERE or HAVING condition.
type Operator string

const (
	OpEq        Operator = "="
	OpNeq       Operator = "!="
	OpNotEq     Operator = "<>"
	OpLt        Operator = "<"
	OpGt        Operator = ">"
	OpLte       Operator = "<="
	OpGte       Operator = ">="
	OpLike      Operator = "LIKE"
	OpNotLike   Operator = "NOT LIKE"
	OpILike     Operator = "ILIKE"
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT IN"
	OpBetween   Operator = "BETWEEN"
	OpIsNull    Operator = "IS NULL"
	OpIsNotNull Operator = "IS NOT NULL"
)

var allowedOperators = map[Operator]bool{
	OpEq: true, OpNeq: true, OpNotEq: true, OpLt: true, OpGt: true, OpLte: true, OpGte: true,
	OpLike: true, OpNotLike: true, OpILike: true,
	OpIn: true, OpNotIn: true, OpBetween: true, OpIsNull: true, OpIsNotNull: true,
}

// Condition is one entry of a WHERE or HAVING list.
// It is a sealed value type constructed via the helpers below or the
// Where/Having family of builder methods.
type Condition struct {
	connector Connector
	field     string
	operator  Operator
	operand   any
	values    []Value
}

func (c Condition) Connector() Connector { return c.connector }
func (c Condition) Field() string        { return c.field }
func (c Condition) Operator() Operator   { return c.operator }

// Values returns the bound operands: none for IS [NOT] NULL, two for BETWEEN,
// the list for IN and NOT IN and one otherwise.
func (c Condition) Values() []Value { return append([]Value(nil), c.values...) }

// Value returns the first operand, or Null when there is none.
func (c Condition) Value() Value {
	if len(c.values) == 0 {
		return Null()
	}
	return c.values[0]
}

// Cond creates a condition with an arbitrary operator.
func Cond(field string, op Operator, value any) Condition {
	return Condition{connector: ConnectorAnd, field: field, operator: op, operand: value}
}

// Eq creates a condition for checking equality.
func Eq(field string, value any) Condition { return Cond(field, OpEq, value) }

// Neq creates a condition for checking inequality.
func Neq(field string, value any) Condition { return Cond(field, OpNeq, value) }

// Gt creates a condition for checking if a value is greater than another.
func Gt(field string, value any) Condition { return Cond(field, OpGt, value) }

// Gte creates a condition for checking if a value is greater than or equal to another.
func Gte(field string, value any) Condition { return Cond(field, OpGte, value) }

// Lt creates a condition for checking if a value is less than another.
func Lt(field string, value any) Condition { return Cond(field, OpLt, value) }

// Lte creates a condition for checking if a value is less than or equal to another.
func Lte(field string, value any) Condition { return Cond(field, OpLte, value) }

// Like creates a condition for checking if a value matches a pattern.
func Like(field string, pattern any) Condition { return Cond(field, OpLike, pattern) }

// In creates a membership condition. A single slice argument is used as the list.
func In(field string, values ...any) Condition { return Cond(field, OpIn, listOperand(values)) }

// NotIn creates a negated membership condition.
func NotIn(field string, values ...any) Condition { return Cond(field, OpNotIn, listOperand(values)) }

func listOperand(values []any) any {
	if len(values) == 1 {
		if _, ok, _ := valuesOf(values[0]); ok {
			return values[0]
		}
	}
	return values
}

// Between creates a range condition. Bounds are bound as given, low first.
func Between(field string, low, high any) Condition {
	return Cond(field, OpBetween, []any{low, high})
}

func IsNull(field string) Condition    { return Cond(field, OpIsNull, nil) }
func IsNotNull(field string) Condition { return Cond(field, OpIsNotNull, nil) }

// Or creates a condition with OR logic.
func Or(c Condition) Condition {
	c.connector = ConnectorOr
	return c
}

// normalizeOperator upper-cases op and collapses inner whitespace.
func normalizeOperator(op Operator) Operator {
	return Operator(strings.Join(strings.Fields(strings.ToUpper(string(op))), " "))
}

// resolve validates the operator against its operand and converts the
// operand into bound values.
func (c Condition) resolve() (Condition, error) {
	c.operator = normalizeOperator(c.operator)
	if strings.TrimSpace(c.field) == "" {
		return c, fmt.Errorf("%w: empty field for operator %s", ErrInvalidOperator, c.operator)
	}
	if !allowedOperators[c.operator] {
		return c, fmt.Errorf("%w: %q on %s", ErrInvalidOperator, string(c.operator), c.field)
	}
	if c.connector != ConnectorOr {
		c.connector = ConnectorAnd
	}

	list, isList, err := valuesOf(c.operand)
	if err != nil {
		return c, fmt.Errorf("%s %s: %w", c.field, c.operator, err)
	}

	switch c.operator {
	case OpIn, OpNotIn:
		if !isList {
			return c, fmt.Errorf("%w: %s requires a list for %s, got %T", ErrInvalidOperator, c.operator, c.field, c.operand)
		}
		if len(list) == 0 {
			return c, fmt.Errorf("%w: %s %s", ErrEmptyInClause, c.field, c.operator)
		}
		c.values = list
	case OpBetween:
		if !isList || len(list) != 2 {
			return c, fmt.Errorf("%w: BETWEEN requires exactly two bounds for %s", ErrInvalidOperator, c.field)
		}
		c.values = list
	case OpIsNull, OpIsNotNull:
		if v, ok := c.operand.(Value); c.operand != nil && !(ok && v.IsNull()) {
			return c, fmt.Errorf("%w: %s takes no value for %s", ErrInvalidOperator, c.operator, c.field)
		}
		c.values = nil
	default:
		if isList {
			return c, fmt.Errorf("%w: list value with %s for %s", ErrInvalidOperator, c.operator, c.field)
		}
		v, err := ValueOf(c.operand)
		if err != nil {
			return c, fmt.Errorf("%s %s: %w", c.field, c.operator, err)
		}
		c.values = []Value{v}
	}
	c.operand = nil
	return c, nil
}
