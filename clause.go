package fluentsql

import "strings"

// writeConditions renders a WHERE or HAVING clause. Nothing is written for an
// empty list. The first condition never carries its connector.
func writeConditions(sb *strings.Builder, p *params, keyword string, conds []Condition) {
	if len(conds) == 0 {
		return
	}
	sb.WriteString(" ")
	sb.WriteString(keyword)
	sb.WriteString(" ")
	for i, c := range conds {
		sb.WriteString(" ")
		if i > 0 && c.connector != ConnectorNone {
			sb.WriteString(string(c.connector))
			sb.WriteString(" ")
		}
		sb.WriteString(c.field)
		sb.WriteString(" ")
		sb.WriteString(string(c.operator))

		switch c.operator {
		case OpIn, OpNotIn:
			sb.WriteString(" (")
			writePlaceholders(sb, len(c.values))
			sb.WriteString(")")
			p.add(c.values...)
		case OpBetween:
			sb.WriteString(" ? AND ?")
			p.add(c.values[0], c.values[1])
		case OpIsNull, OpIsNotNull:
		default:
			sb.WriteString(" ?")
			p.add(c.values[0])
		}
	}
}

// writePlaceholders writes n comma separated placeholders.
func writePlaceholders(sb *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
	}
}

func writeJoins(sb *strings.Builder, p *params, joins []JoinSpec) {
	for _, j := range joins {
		j.write(sb, p)
	}
}

func writeGroupBy(sb *strings.Builder, fields []string) {
	if len(fields) == 0 {
		return
	}
	sb.WriteString(" GROUP BY ")
	sb.WriteString(strings.Join(fields, ", "))
}

func writeOrderBy(sb *strings.Builder, o *orderSpec) {
	if o.empty() {
		return
	}
	sb.WriteString(" ORDER BY ")
	for i, c := range o.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c)
		sb.WriteString(" ")
		sb.WriteString(string(o.dirs[c]))
	}
}
