package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/recordbase/backend/pkg/query"
)

// Relation types as reported by SHOW FULL TABLES
const (
	RelationTable = "BASE TABLE"
	RelationView  = "VIEW"
)

// RelationDDL is the CREATE statement of a table or view
type RelationDDL struct {
	Name string
	Type string
	DDL  string
}

// SchemaRepository reads table and view definitions of the current database
type SchemaRepository struct {
	db Executor
}

// NewSchemaRepository creates a new SchemaRepository
func NewSchemaRepository(db *sql.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// LoadDDL returns the CREATE statements of all tables and views, tables first, each group in
// the order the server lists them.
func (r *SchemaRepository) LoadDDL(ctx context.Context) ([]RelationDDL, error) {
	relations, err := r.listRelations(ctx)
	if err != nil {
		return nil, err
	}

	var tables, views []RelationDDL
	for _, rel := range relations {
		stmt := "SHOW CREATE TABLE " + query.QuoteIdent(rel.Name)
		if rel.Type == RelationView {
			stmt = "SHOW CREATE VIEW " + query.QuoteIdent(rel.Name)
		}

		ddl, err := r.showCreate(ctx, stmt)
		if err != nil {
			return nil, fmt.Errorf("failed to load DDL of %s: %w", rel.Name, err)
		}
		rel.DDL = ddl

		if rel.Type == RelationView {
			views = append(views, rel)
		} else {
			tables = append(tables, rel)
		}
	}

	return append(tables, views...), nil
}

func (r *SchemaRepository) listRelations(ctx context.Context) ([]RelationDDL, error) {
	rows, err := r.db.QueryContext(ctx, "SHOW FULL TABLES")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var relations []RelationDDL
	for rows.Next() {
		var rel RelationDDL
		if err := rows.Scan(&rel.Name, &rel.Type); err != nil {
			return nil, err
		}
		if rel.Type != RelationTable && rel.Type != RelationView {
			continue
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

// showCreate returns the second column of a SHOW CREATE result. Views return extra charset
// columns which are ignored.
func (r *SchemaRepository) showCreate(ctx context.Context, stmt string) (string, error) {
	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}
	if len(columns) < 2 {
		return "", fmt.Errorf("unexpected result with %d columns", len(columns))
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", err
		}
		return "", sql.ErrNoRows
	}

	values := make([]sql.RawBytes, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return "", err
	}
	return string(values[1]), nil
}
