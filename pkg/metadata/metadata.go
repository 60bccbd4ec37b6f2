// Package metadata derives the per-relation facts the record API relies on: the column usable
// as a stable pagination key, the columns owning a record, and the JSON schemas of JSON columns.
//
// Fact sheets are built once per schema load and never mutated afterwards, so they can be
// shared between any number of concurrent requests without locking.
package metadata

import (
	"github.com/recordbase/backend/pkg/jsonschema"
	"github.com/recordbase/backend/pkg/schema"
)

// TableOrViewMetadata is the view of a fact sheet shared by tables and views.
type TableOrViewMetadata interface {
	Name() string
	// Columns returns nil for views whose columns could not be inferred.
	Columns() []schema.Column
	RecordPKColumn() (int, *schema.Column, bool)
	UserIDColumns() []int
	// JSONMetadata returns nil for views whose columns could not be inferred.
	JSONMetadata() *JSONMetadata
	ColumnIndexByName(name string) (int, bool)
	ColumnByName(name string) (int, *schema.Column, bool)
}

var (
	_ TableOrViewMetadata = (*TableMetadata)(nil)
	_ TableOrViewMetadata = (*ViewMetadata)(nil)
)

// TableMetadata describes a table plus the record API specific facts derived from it.
type TableMetadata struct {
	Schema schema.Table

	recordPKColumn int
	userIDColumns  []int
	jsonMetadata   *JSONMetadata
	nameToIndex    map[string]int
}

// NewTableMetadata builds the fact sheet of table. tables is the full list of known tables and
// is only consulted to resolve foreign keys of the primary key column.
func NewTableMetadata(table schema.Table, tables []schema.Table, userTableName string, registry jsonschema.Registry) *TableMetadata {
	return &TableMetadata{
		Schema:         table,
		recordPKColumn: findRecordPKColumnIndex(table.Columns, tables),
		userIDColumns:  findUserIDForeignKeyColumns(table.Columns, userTableName),
		jsonMetadata:   newJSONMetadata(table.Columns, registry),
		nameToIndex:    indexColumns(table.Columns),
	}
}

func (m *TableMetadata) Name() string {
	return m.Schema.Name
}

func (m *TableMetadata) Columns() []schema.Column {
	return m.Schema.Columns
}

func (m *TableMetadata) RecordPKColumn() (int, *schema.Column, bool) {
	if m.recordPKColumn < 0 || m.recordPKColumn >= len(m.Schema.Columns) {
		return -1, nil, false
	}
	return m.recordPKColumn, &m.Schema.Columns[m.recordPKColumn], true
}

// UserIDColumns returns the indexes of columns referencing the identity table's id.
func (m *TableMetadata) UserIDColumns() []int {
	return m.userIDColumns
}

func (m *TableMetadata) JSONMetadata() *JSONMetadata {
	return m.jsonMetadata
}

func (m *TableMetadata) ColumnIndexByName(name string) (int, bool) {
	i, ok := m.nameToIndex[name]
	return i, ok
}

func (m *TableMetadata) ColumnByName(name string) (int, *schema.Column, bool) {
	i, ok := m.nameToIndex[name]
	if !ok {
		return -1, nil, false
	}
	return i, &m.Schema.Columns[i], true
}

// ViewMetadata describes a view. Every derived fact is absent when the view's columns are unknown.
type ViewMetadata struct {
	Schema schema.View

	recordPKColumn int
	userIDColumns  []int
	jsonMetadata   *JSONMetadata
	nameToIndex    map[string]int
}

// NewViewMetadata builds the fact sheet of view.
func NewViewMetadata(view schema.View, tables []schema.Table, userTableName string, registry jsonschema.Registry) *ViewMetadata {
	md := &ViewMetadata{
		Schema:         view,
		recordPKColumn: -1,
		nameToIndex:    map[string]int{},
	}
	if view.Columns != nil {
		md.recordPKColumn = findRecordPKColumnIndex(view.Columns, tables)
		md.userIDColumns = findUserIDForeignKeyColumns(view.Columns, userTableName)
		md.jsonMetadata = newJSONMetadata(view.Columns, registry)
		md.nameToIndex = indexColumns(view.Columns)
	}
	return md
}

func (m *ViewMetadata) Name() string {
	return m.Schema.Name
}

func (m *ViewMetadata) Columns() []schema.Column {
	return m.Schema.Columns
}

func (m *ViewMetadata) RecordPKColumn() (int, *schema.Column, bool) {
	if m.recordPKColumn < 0 || m.recordPKColumn >= len(m.Schema.Columns) {
		return -1, nil, false
	}
	return m.recordPKColumn, &m.Schema.Columns[m.recordPKColumn], true
}

// UserIDColumns returns the indexes of columns referencing the identity table's id.
func (m *ViewMetadata) UserIDColumns() []int {
	return m.userIDColumns
}

func (m *ViewMetadata) JSONMetadata() *JSONMetadata {
	return m.jsonMetadata
}

func (m *ViewMetadata) ColumnIndexByName(name string) (int, bool) {
	i, ok := m.nameToIndex[name]
	return i, ok
}

func (m *ViewMetadata) ColumnByName(name string) (int, *schema.Column, bool) {
	i, ok := m.nameToIndex[name]
	if !ok {
		return -1, nil, false
	}
	return i, &m.Schema.Columns[i], true
}

func indexColumns(columns []schema.Column) map[string]int {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col.Name] = i
	}
	return index
}
