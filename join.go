package fluentsql

import (
	"fmt"
	"strings"
)

// JoinKind is the type keyword rendered before JOIN. The empty kind renders
// a bare JOIN.
type JoinKind string

const (
	JoinDefault    JoinKind = ""
	JoinInner      JoinKind = "INNER"
	JoinLeft       JoinKind = "LEFT"
	JoinRight      JoinKind = "RIGHT"
	JoinOuter      JoinKind = "OUTER"
	JoinLeftOuter  JoinKind = "LEFT OUTER"
	JoinRightOuter JoinKind = "RIGHT OUTER"
	JoinNatural    JoinKind = "NATURAL"
)

var allowedJoinKinds = map[JoinKind]bool{
	JoinDefault: true, JoinInner: true, JoinLeft: true, JoinRight: true, JoinOuter: true,
	JoinLeftOuter: true, JoinRightOuter: true, JoinNatural: true,
}

// JoinSpec is one JOIN clause. Target is either a table reference or a
// composed sub-statement rendered in parentheses.
type JoinSpec struct {
	kind      JoinKind
	target    string
	sub       *Statement
	predicate string
}

func (j JoinSpec) Kind() JoinKind       { return j.kind }
func (j JoinSpec) Target() string       { return j.target }
func (j JoinSpec) Predicate() string    { return j.predicate }
func (j JoinSpec) IsSubStatement() bool { return j.sub != nil }

// parseJoinKind trims and upper-cases kind and checks it against the allowed set.
func parseJoinKind(kind string) (JoinKind, error) {
	k := JoinKind(strings.Join(strings.Fields(strings.ToUpper(kind)), " "))
	if !allowedJoinKinds[k] {
		return k, fmt.Errorf("%w: %q", ErrInvalidJoinKind, kind)
	}
	return k, nil
}

func newJoin(kind, target, predicate string) (JoinSpec, error) {
	k, err := parseJoinKind(kind)
	if err != nil {
		return JoinSpec{}, err
	}
	if strings.TrimSpace(target) == "" {
		return JoinSpec{}, fmt.Errorf("%w: join target", ErrEmptyTable)
	}
	return JoinSpec{kind: k, target: target, predicate: predicate}, nil
}

func newSubJoin(kind string, sub Statement, alias, predicate string) (JoinSpec, error) {
	k, err := parseJoinKind(kind)
	if err != nil {
		return JoinSpec{}, err
	}
	if sub.SQL == "" {
		return JoinSpec{}, fmt.Errorf("%w: empty join sub-statement", ErrEmptyTable)
	}
	if n := countPlaceholders(sub.SQL); n != len(sub.Params) {
		return JoinSpec{}, fmt.Errorf("%w: join sub-statement has %d placeholders and %d parameters", ErrParameterCountMismatch, n, len(sub.Params))
	}
	s := sub.clone()
	return JoinSpec{kind: k, target: strings.TrimSpace(alias), sub: &s, predicate: predicate}, nil
}

// write renders ` <KIND> JOIN <target> ON <predicate>` and accumulates the
// parameters of a sub-statement target.
func (j JoinSpec) write(sb *strings.Builder, p *params) {
	sb.WriteString(" ")
	if j.kind != JoinDefault {
		sb.WriteString(string(j.kind))
		sb.WriteString(" ")
	}
	sb.WriteString("JOIN ")
	if j.sub != nil {
		sb.WriteString("(")
		sb.WriteString(j.sub.SQL)
		sb.WriteString(")")
		if j.target != "" {
			sb.WriteString(" ")
			sb.WriteString(j.target)
		}
		p.add(j.sub.Params...)
	} else {
		sb.WriteString(j.target)
	}
	if j.predicate != "" {
		sb.WriteString(" ON ")
		sb.WriteString(j.predicate)
	}
}
