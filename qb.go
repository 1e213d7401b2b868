package fluentsql

import (
	"fmt"
	"strings"
)

// QB holds the state of one pending statement: WHERE and HAVING conditions,
// joins, ordering, grouping, the limit and the parameter accumulator.
// Fluent methods mutate the state and return the same QB; none of them run SQL.
// A QB is not safe for concurrent use.
type QB struct {
	where   []Condition
	having  []Condition
	joins   []JoinSpec
	orderBy orderSpec
	groupBy []string
	limit   limitSpec
	params  params
	err     error
}

// NewQB returns an empty builder.
func NewQB() *QB {
	return &QB{}
}

// Where adds an AND equality condition.
func (qb *QB) Where(field string, value any) *QB {
	return qb.addWhere(Cond(field, OpEq, value), "Where")
}

// WhereOp adds an AND condition with the given operator.
func (qb *QB) WhereOp(field string, op Operator, value any) *QB {
	return qb.addWhere(Cond(field, op, value), "WhereOp")
}

// OrWhere adds an OR equality condition.
func (qb *QB) OrWhere(field string, value any) *QB {
	return qb.addWhere(Or(Cond(field, OpEq, value)), "OrWhere")
}

// OrWhereOp adds an OR condition with the given operator.
func (qb *QB) OrWhereOp(field string, op Operator, value any) *QB {
	return qb.addWhere(Or(Cond(field, op, value)), "OrWhereOp")
}

// Filter adds conditions built with Eq, In, Between, Or and friends to WHERE.
func (qb *QB) Filter(conds ...Condition) *QB {
	for _, c := range conds {
		qb.addWhere(c, "Filter")
	}
	return qb
}

// Having adds an AND equality condition to HAVING.
func (qb *QB) Having(field string, value any) *QB {
	return qb.addHaving(Cond(field, OpEq, value), "Having")
}

// HavingOp adds an AND condition with the given operator to HAVING.
func (qb *QB) HavingOp(field string, op Operator, value any) *QB {
	return qb.addHaving(Cond(field, op, value), "HavingOp")
}

// OrHaving adds an OR equality condition to HAVING.
func (qb *QB) OrHaving(field string, value any) *QB {
	return qb.addHaving(Or(Cond(field, OpEq, value)), "OrHaving")
}

// OrHavingOp adds an OR condition with the given operator to HAVING.
func (qb *QB) OrHavingOp(field string, op Operator, value any) *QB {
	return qb.addHaving(Or(Cond(field, op, value)), "OrHavingOp")
}

// Join adds `<kind> JOIN <table> ON <predicate>`. kind must be empty or one of
// INNER, LEFT, RIGHT, OUTER, LEFT OUTER, RIGHT OUTER, NATURAL.
func (qb *QB) Join(kind, table, predicate string) *QB {
	j, err := newJoin(kind, table, predicate)
	if err != nil {
		return qb.fail("Join", table, err)
	}
	qb.joins = append(qb.joins, j)
	return qb
}

// JoinSub joins a composed statement as `(<sql>) <alias>`. Its parameters are
// bound where the JOIN appears, ahead of WHERE parameters.
func (qb *QB) JoinSub(kind string, sub Statement, alias, predicate string) *QB {
	j, err := newSubJoin(kind, sub, alias, predicate)
	if err != nil {
		return qb.fail("JoinSub", alias, err)
	}
	qb.joins = append(qb.joins, j)
	return qb
}

// OrderBy sets the direction of column. dir is ASC or DESC, case-insensitive.
// Ordering a column twice keeps its first position with the last direction.
func (qb *QB) OrderBy(column, dir string) *QB {
	d, err := parseDirection(dir)
	if err != nil {
		return qb.fail("OrderBy", column, err)
	}
	qb.orderBy.set(column, d)
	return qb
}

// GroupBy adds a group by clause to the query.
func (qb *QB) GroupBy(columns ...string) *QB {
	qb.groupBy = append(qb.groupBy, columns...)
	return qb
}

// Limit renders LIMIT count. Negative values become zero.
func (qb *QB) Limit(count int) *QB {
	qb.limit = newLimit(count)
	return qb
}

// LimitOffset renders LIMIT count OFFSET offset. Negative values become zero.
func (qb *QB) LimitOffset(offset, count int) *QB {
	qb.limit = newLimitOffset(offset, count)
	return qb
}

// Err returns the first error raised by a fluent call since the last reset.
func (qb *QB) Err() error { return qb.err }

// Conditions returns the WHERE conditions in insertion order, connectors as recorded.
func (qb *QB) Conditions() []Condition { return append([]Condition(nil), qb.where...) }

// HavingConditions returns the HAVING conditions in insertion order.
func (qb *QB) HavingConditions() []Condition { return append([]Condition(nil), qb.having...) }

func (qb *QB) Joins() []JoinSpec { return append([]JoinSpec(nil), qb.joins...) }
func (qb *QB) Orders() []Order   { return qb.orderBy.list() }
func (qb *QB) Groups() []string  { return append([]string(nil), qb.groupBy...) }
func (qb *QB) Params() []Value   { return qb.params.snapshot() }

// Empty reports whether no state has been recorded since the last reset.
func (qb *QB) Empty() bool {
	return len(qb.where) == 0 && len(qb.having) == 0 && len(qb.joins) == 0 &&
		qb.orderBy.empty() && len(qb.groupBy) == 0 && !qb.limit.set &&
		qb.params.len() == 0 && qb.err == nil
}

// Reset clears all statement state.
func (qb *QB) Reset() *QB {
	*qb = QB{}
	return qb
}

// Clone returns an independent copy of the pending state.
func (qb *QB) Clone() *QB {
	c := &QB{
		where:   append([]Condition(nil), qb.where...),
		having:  append([]Condition(nil), qb.having...),
		joins:   append([]JoinSpec(nil), qb.joins...),
		orderBy: qb.orderBy.clone(),
		groupBy: append([]string(nil), qb.groupBy...),
		limit:   qb.limit,
		params:  params{values: qb.params.snapshot()},
		err:     qb.err,
	}
	return c
}

func (qb *QB) addWhere(c Condition, call string) *QB {
	rc, err := c.resolve()
	if err != nil {
		return qb.fail(call, c.field, err)
	}
	qb.where = append(qb.where, rc)
	return qb
}

func (qb *QB) addHaving(c Condition, call string) *QB {
	rc, err := c.resolve()
	if err != nil {
		return qb.fail(call, c.field, err)
	}
	qb.having = append(qb.having, rc)
	return qb
}

// fail records the first construction error, naming the fluent call.
func (qb *QB) fail(call, subject string, err error) *QB {
	if qb.err == nil {
		if s := strings.TrimSpace(subject); s != "" {
			qb.err = fmt.Errorf("%s(%s): %w", call, s, err)
		} else {
			qb.err = fmt.Errorf("%s: %w", call, err)
		}
	}
	return qb
}
