package fluentsql

import (
	"strconv"
	"strings"
)

// params accumulates bound values in the order their placeholders appear in
// the emitted SQL text. It is append-only until reset.
type params struct {
	values []Value
}

func (p *params) add(vs ...Value) {
	p.values = append(p.values, vs...)
}

func (p *params) len() int { return len(p.values) }

func (p *params) reset() { p.values = nil }

// snapshot returns a copy that later appends cannot alias.
func (p *params) snapshot() []Value {
	if len(p.values) == 0 {
		return nil
	}
	return append([]Value(nil), p.values...)
}

// countPlaceholders counts ? markers in query, skipping quoted literals,
// quoted identifiers and comments.
func countPlaceholders(query string) int {
	n := 0
	scanPlaceholders(query, func(int) { n++ })
	return n
}

// Numbered rewrites the ? placeholders of query as $1, $2, ... in order.
// Question marks inside quotes and comments are left alone, matching the
// count the composer checks parameters against.
func Numbered(query string) string {
	var sb strings.Builder
	n, last := 0, 0
	scanPlaceholders(query, func(i int) {
		n++
		sb.WriteString(query[last:i])
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
		last = i + 1
	})
	if n == 0 {
		return query
	}
	sb.WriteString(query[last:])
	return sb.String()
}

// scanPlaceholders calls fn with the index of every ? outside quotes and comments.
func scanPlaceholders(query string, fn func(i int)) {
	for i := 0; i < len(query); i++ {
		switch c := query[i]; c {
		case '?':
			fn(i)
		case '\'', '"', '`':
			i = skipQuoted(query, i, c)
		case '-':
			if i+1 < len(query) && query[i+1] == '-' {
				for i < len(query) && query[i] != '\n' {
					i++
				}
			}
		case '/':
			if i+1 < len(query) && query[i+1] == '*' {
				i += 2
				for i+1 < len(query) && !(query[i] == '*' && query[i+1] == '/') {
					i++
				}
				i++
			}
		}
	}
}

// skipQuoted returns the index of the quote closing the literal opened at
// start. A doubled quote is an escaped quote.
func skipQuoted(query string, start int, quote byte) int {
	for i := start + 1; i < len(query); i++ {
		if query[i] != quote {
			continue
		}
		if i+1 < len(query) && query[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return len(query)
}
