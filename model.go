package fluentsql

// Model represents a database model.
// Consumers implement this interface, usually through code generated by fluentgen.
// Columns() and Values() MUST always be in the same field order.
type Model interface {
	TableName() string
	Columns() []string
	Values() []any
}

// PrimaryKeyer is implemented by models that declare a primary key column.
type PrimaryKeyer interface {
	PrimaryKey() string
}

// AutoIncrementer lists the columns the backend fills in. InsertModel leaves
// them out while they hold a zero value.
type AutoIncrementer interface {
	AutoIncrement() []string
}

// Validator is checked by InsertModel and UpdateModel before anything is composed.
type Validator interface {
	Validate() error
}
