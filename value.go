package fluentsql

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind is the storage class of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// BindType is the parameter type handed to the backend when a Value is bound.
type BindType uint8

const (
	BindNull BindType = iota
	BindBool
	BindInt
	BindText
)

// Value is a closed set of scalar values used both as bound parameters and as
// the cells of result rows.
// It is a sealed value type constructed via Null, Bool, Int, Float, Text, Binary or ValueOf.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	bin  []byte
}

func Null() Value            { return Value{kind: KindNull} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Text(s string) Value    { return Value{kind: KindText, s: s} }
func Binary(b []byte) Value  { return Value{kind: KindBinary, bin: b} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Bytes() []byte {
	if v.kind == KindText {
		return []byte(v.s)
	}
	return v.bin
}

// Equal reports whether v and o have the same kind and text form.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.String() == o.String()
}

// BindType maps the value onto the backend bind type: null binds as NULL,
// booleans as booleans, integers as integers and everything else as text.
func (v Value) BindType() BindType {
	switch v.kind {
	case KindNull:
		return BindNull
	case KindBool:
		return BindBool
	case KindInt:
		return BindInt
	default:
		return BindText
	}
}

// Arg returns the driver argument for v according to its BindType.
// Binary values keep their bytes; drivers encode them in their text form.
func (v Value) Arg() any {
	switch v.BindType() {
	case BindNull:
		return nil
	case BindBool:
		return v.b
	case BindInt:
		return v.i
	}
	if v.kind == KindBinary {
		return v.bin
	}
	return v.String()
}

// Interface returns the natural Go value held by v.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBinary:
		return v.bin
	}
	return nil
}

// Bool reports the boolean held by v. Integers are true when non-zero and
// text is parsed with strconv.ParseBool.
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindText:
		b, _ := strconv.ParseBool(v.s)
		return b
	}
	return false
}

// Int64 converts v to an integer; text is parsed, floats are truncated.
func (v Value) Int64() int64 {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1
		}
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	case KindText:
		if i, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(v.s, 64)
		return int64(f)
	}
	return 0
}

// Float64 converts v to a float; text is parsed.
func (v Value) Float64() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	case KindText:
		f, _ := strconv.ParseFloat(v.s, 64)
		return f
	}
	return 0
}

// String returns the text form of v. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBinary:
		return string(v.bin)
	}
	return ""
}

// GoString keeps debug dumps readable.
func (v Value) GoString() string {
	if v.kind == KindNull {
		return "NULL"
	}
	return v.kind.String() + "(" + strconv.Quote(v.String()) + ")"
}

// ValueOf converts a scalar Go value into a Value. Slices other than []byte
// are rejected; use them only with IN, NOT IN and BETWEEN conditions.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return Text(t), nil
	case []byte:
		return Binary(t), nil
	case time.Time:
		return Text(t.Format(time.RFC3339Nano)), nil
	case driver.Valuer:
		dv, err := t.Value()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		if _, loop := dv.(driver.Valuer); loop {
			return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
		}
		return ValueOf(dv)
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, u)
	}
	return Int(int64(u)), nil
}

// valuesOf converts a list operand. The second result is false when x is not a
// supported slice type, in which case x must be handled as a scalar.
func valuesOf(x any) ([]Value, bool, error) {
	switch t := x.(type) {
	case []Value:
		return append([]Value(nil), t...), true, nil
	case []any:
		return convertSlice(t)
	case []string:
		return convertSlice(t)
	case []int:
		return convertSlice(t)
	case []int32:
		return convertSlice(t)
	case []int64:
		return convertSlice(t)
	case []uint64:
		return convertSlice(t)
	case []float64:
		return convertSlice(t)
	case []bool:
		return convertSlice(t)
	}
	return reflectList(x)
}

// reflectList converts any other slice or array element by element. Byte
// slices stay scalars.
func reflectList(x any) ([]Value, bool, error) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false, nil
		}
	case reflect.Array:
	default:
		return nil, false, nil
	}
	out := make([]Value, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := ValueOf(rv.Index(i).Interface())
		if err != nil {
			return nil, true, err
		}
		out = append(out, v)
	}
	return out, true, nil
}

func convertSlice[T any](xs []T) ([]Value, bool, error) {
	out := make([]Value, 0, len(xs))
	for _, x := range xs {
		v, err := ValueOf(x)
		if err != nil {
			return nil, true, err
		}
		out = append(out, v)
	}
	return out, true, nil
}

// Args converts values into driver arguments using Value.Arg.
func Args(values []Value) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.Arg()
	}
	return args
}
