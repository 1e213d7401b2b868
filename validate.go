package fluentsql

import "fmt"

func validate(m Model) error {
	if m == nil || m.TableName() == "" {
		return ErrEmptyTable
	}
	if len(m.Columns()) != len(m.Values()) {
		return fmt.Errorf("%w: columns and values length mismatch", ErrValidation)
	}
	return nil
}

// checkModel runs validate and then the model's own Validator.
func checkModel(m Model) error {
	if err := validate(m); err != nil {
		return err
	}
	if v, ok := m.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Required reports a missing value for column. Generated Validate methods use it.
func Required(column string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, column)
}

// modelData splits m into its primary key (if declared) and the columns kept
// by keep.
func modelData(m Model, keep func(column string, pk bool, v Value) bool) (Data, string, Value, error) {
	if err := validate(m); err != nil {
		return nil, "", Null(), err
	}
	pk := ""
	if p, ok := m.(PrimaryKeyer); ok {
		pk = p.PrimaryKey()
	}
	cols, vals := m.Columns(), m.Values()
	d := make(Data, 0, len(cols))
	pkValue := Null()
	for i, c := range cols {
		v, err := ValueOf(vals[i])
		if err != nil {
			return nil, "", Null(), fmt.Errorf("column %s: %w", c, err)
		}
		isPK := pk != "" && c == pk
		if isPK {
			pkValue = v
		}
		if keep(c, isPK, v) {
			d = d.Set(c, v)
		}
	}
	return d, pk, pkValue, nil
}

// insertFilter keeps every column but zero auto-increment ones. Without an
// AutoIncrementer a zero primary key is treated as auto-increment.
func insertFilter(m Model) func(column string, pk bool, v Value) bool {
	a, ok := m.(AutoIncrementer)
	if !ok {
		return func(_ string, pk bool, v Value) bool { return !pk || !isZero(v) }
	}
	auto := make(map[string]bool)
	for _, c := range a.AutoIncrement() {
		auto[c] = true
	}
	return func(c string, _ bool, v Value) bool { return !auto[c] || !isZero(v) }
}

// isZero reports whether v is the zero value of its kind.
func isZero(v Value) bool {
	switch v.Kind() {
	case KindNull:
		return true
	case KindInt:
		return v.Int64() == 0
	case KindText:
		return v.String() == ""
	}
	return false
}
