package schema

import "strings"

// ColumnDataType is the storage affinity of a declared column type.
type ColumnDataType int

const (
	DataTypeAny ColumnDataType = iota
	DataTypeInteger
	DataTypeReal
	DataTypeNumeric
	DataTypeText
	DataTypeBlob
)

func (t ColumnDataType) String() string {
	switch t {
	case DataTypeInteger:
		return "INTEGER"
	case DataTypeReal:
		return "REAL"
	case DataTypeNumeric:
		return "NUMERIC"
	case DataTypeText:
		return "TEXT"
	case DataTypeBlob:
		return "BLOB"
	default:
		return "ANY"
	}
}

// DataTypeFromDeclared maps a declared SQL type name (e.g. "varchar(255)", "bigint") onto its
// affinity. Rules are applied in order, the first match wins.
func DataTypeFromDeclared(declared string) ColumnDataType {
	d := strings.ToUpper(strings.TrimSpace(declared))
	switch {
	case d == "":
		return DataTypeAny
	case strings.Contains(d, "INT"):
		return DataTypeInteger
	case strings.Contains(d, "CHAR"), strings.Contains(d, "CLOB"), strings.Contains(d, "TEXT"),
		strings.Contains(d, "JSON"), strings.Contains(d, "ENUM"):
		return DataTypeText
	case strings.Contains(d, "BLOB"), strings.Contains(d, "BINARY"):
		return DataTypeBlob
	case strings.Contains(d, "REAL"), strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"):
		return DataTypeReal
	default:
		return DataTypeNumeric
	}
}

// ColumnOption is one constraint attached to a column. The set of implementations is closed.
type ColumnOption interface {
	isColumnOption()
}

// Unique marks a UNIQUE or PRIMARY KEY constraint.
type Unique struct {
	IsPrimary bool
}

// ForeignKey references one or more columns of another table.
type ForeignKey struct {
	ForeignTable    string
	ReferredColumns []string
	OnDelete        string
	OnUpdate        string
}

// Check holds the text of a CHECK expression.
type Check struct {
	Expr string
}

// NotNull marks a NOT NULL constraint.
type NotNull struct{}

// Default holds the text of a DEFAULT expression.
type Default struct {
	Expr string
}

func (Unique) isColumnOption()     {}
func (ForeignKey) isColumnOption() {}
func (Check) isColumnOption()      {}
func (NotNull) isColumnOption()    {}
func (Default) isColumnOption()    {}

// Column represents a single column of a table or view
type Column struct {
	Name     string
	DataType ColumnDataType
	Options  []ColumnOption
}

// IsPrimaryKey reports whether the first uniqueness option of the column is a primary key.
func (c *Column) IsPrimaryKey() bool {
	for _, opt := range c.Options {
		if u, ok := opt.(Unique); ok {
			return u.IsPrimary
		}
	}
	return false
}

// ForeignKeys returns the foreign key options of the column in declaration order.
func (c *Column) ForeignKeys() []ForeignKey {
	var fks []ForeignKey
	for _, opt := range c.Options {
		if fk, ok := opt.(ForeignKey); ok {
			fks = append(fks, fk)
		}
	}
	return fks
}

// Table represents a table definition
type Table struct {
	Name    string
	Columns []Column
}

// View represents a view definition. Columns is nil when the column types of the backing
// query could not be inferred.
type View struct {
	Name      string
	Query     string
	Temporary bool
	Columns   []Column
}

// FindTable returns the table with the given name.
func FindTable(tables []Table, name string) (*Table, bool) {
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i], true
		}
	}
	return nil, false
}

// FindColumn returns the index and column with the given name.
func FindColumn(columns []Column, name string) (int, *Column, bool) {
	for i := range columns {
		if columns[i].Name == name {
			return i, &columns[i], true
		}
	}
	return -1, nil, false
}
