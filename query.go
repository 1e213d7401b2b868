package fluentsql

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

func parseDirection(dir string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(dir)))
	if d != Asc && d != Desc {
		return d, fmt.Errorf("%w: %q", ErrInvalidOrderDirection, dir)
	}
	return d, nil
}

// Order represents a sort order for a query.
// It is a sealed value type read back via QB.Orders().
type Order struct {
	column string
	dir    Direction
}

func (o Order) Column() string { return o.column }
func (o Order) Dir() Direction { return o.dir }

// orderSpec is an insertion-ordered map from column to direction. Setting a
// column again replaces its direction and keeps its original position.
type orderSpec struct {
	columns []string
	dirs    map[string]Direction
}

func (o *orderSpec) set(column string, dir Direction) {
	if o.dirs == nil {
		o.dirs = make(map[string]Direction)
	}
	if _, ok := o.dirs[column]; !ok {
		o.columns = append(o.columns, column)
	}
	o.dirs[column] = dir
}

func (o *orderSpec) empty() bool { return len(o.columns) == 0 }

func (o *orderSpec) list() []Order {
	out := make([]Order, 0, len(o.columns))
	for _, c := range o.columns {
		out = append(out, Order{column: c, dir: o.dirs[c]})
	}
	return out
}

func (o orderSpec) clone() orderSpec {
	c := orderSpec{columns: append([]string(nil), o.columns...)}
	if o.dirs != nil {
		c.dirs = make(map[string]Direction, len(o.dirs))
		for k, v := range o.dirs {
			c.dirs[k] = v
		}
	}
	return c
}

// limitSpec is either a row count or an (offset, count) pair. Both are
// non-negative and rendered as literals.
type limitSpec struct {
	set       bool
	hasOffset bool
	offset    int
	count     int
}

func newLimit(count int) limitSpec {
	return limitSpec{set: true, count: max(count, 0)}
}

func newLimitOffset(offset, count int) limitSpec {
	return limitSpec{set: true, hasOffset: true, offset: max(offset, 0), count: max(count, 0)}
}

// first limits the count to one row and keeps a pending offset.
func (l limitSpec) first() limitSpec {
	if l.hasOffset {
		l.count = 1
		return l
	}
	return newLimit(1)
}

func (l limitSpec) write(sb *strings.Builder) {
	if !l.set {
		return
	}
	sb.WriteString(" LIMIT ")
	sb.WriteString(strconv.Itoa(l.count))
	if l.hasOffset {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(l.offset))
	}
}
