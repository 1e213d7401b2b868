//go:build !wasm

package modelgen

// FieldType represents the abstract storage type of a model field. It picks
// the fluentsql.Value accessor used by the generated Scan method and the
// emptiness check of generated Validate methods.
type FieldType int

const (
	TypeText FieldType = iota
	TypeInt64
	TypeFloat64
	TypeBool
	TypeBlob
)

// Constraint is a bitmask of column-level constraints read from db tags.
// Auto-increment columns are listed by the generated AutoIncrement method,
// not-null text and blob columns are checked by Validate, and unique columns
// are listed in <Model>Meta.UniqueColumns.
// ConstraintNone = 0 is defined separately to avoid shifting iota off-by-one.
type Constraint int

const ConstraintNone Constraint = 0

const (
	ConstraintPK            Constraint = 1 << iota // 1: Primary Key (auto-detected via fmt.IDorPrimaryKey)
	ConstraintUnique                               // 2: UNIQUE
	ConstraintNotNull                              // 4: NOT NULL
	ConstraintAutoIncrement                        // 8: SERIAL / AUTOINCREMENT
)

func (c Constraint) Has(flag Constraint) bool { return c&flag != 0 }
