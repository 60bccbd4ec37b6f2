package metadata

import (
	"log"
	"regexp"

	"github.com/recordbase/backend/pkg/constants"
	"github.com/recordbase/backend/pkg/schema"
)

var uuidV7Regex = regexp.MustCompile(`(?i)^is_uuid_v7\s*\(`)

// findPKColumnIndex returns the index of the primary key column or -1.
func findPKColumnIndex(columns []schema.Column) int {
	for i := range columns {
		if columns[i].IsPrimaryKey() {
			return i
		}
	}
	return -1
}

// findRecordPKColumnIndex finds a primary key column usable for cursor pagination, i.e. one
// that is unique and sorts in insertion order: an integer key or a UUIDv7 key, either directly
// or through a foreign key to such a column. Returns -1 if there is none.
func findRecordPKColumnIndex(columns []schema.Column, tables []schema.Table) int {
	index := findPKColumnIndex(columns)
	if index < 0 {
		return -1
	}
	column := &columns[index]

	if column.DataType == schema.DataTypeInteger {
		return index
	}

	for _, opt := range column.Options {
		switch o := opt.(type) {
		case schema.ForeignKey:
			referredTable, ok := schema.FindTable(tables, o.ForeignTable)
			if !ok {
				log.Printf("⚠️ Failed to get foreign key schema for %s", o.ForeignTable)
				continue
			}
			if len(o.ReferredColumns) != 1 {
				return -1
			}
			_, referred, ok := schema.FindColumn(referredTable.Columns, o.ReferredColumns[0])
			if !ok {
				return -1
			}

			isPK := false
			for _, ropt := range referred.Options {
				switch r := ropt.(type) {
				case schema.Check:
					if uuidV7Regex.MatchString(r.Expr) {
						return index
					}
				case schema.Unique:
					if r.IsPrimary {
						isPK = true
					}
				}
			}
			if isPK && referred.DataType == schema.DataTypeInteger {
				return index
			}
			return -1
		case schema.Check:
			if uuidV7Regex.MatchString(o.Expr) {
				return index
			}
		}
	}

	return -1
}

// findUserIDForeignKeyColumns returns the indexes of columns referencing userTableName(id).
func findUserIDForeignKeyColumns(columns []schema.Column, userTableName string) []int {
	var indexes []int
	for i := range columns {
		for _, fk := range columns[i].ForeignKeys() {
			if fk.ForeignTable == userTableName &&
				len(fk.ReferredColumns) == 1 &&
				fk.ReferredColumns[0] == constants.UserIDColumn {
				indexes = append(indexes, i)
			}
		}
	}
	return indexes
}
