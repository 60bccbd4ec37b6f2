package schema

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	"github.com/pingcap/tidb/pkg/parser/mysql"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // ValueExpr implementation for literals
)

// Expressions are restored unquoted and lower-cased so CHECK texts read like they were written.
const exprRestoreFlags = format.RestoreStringSingleQuotes |
	format.RestoreKeyWordLowercase |
	format.RestoreStringWithoutCharset

// ParseCreateTable parses a single CREATE TABLE statement into a Table.
func ParseCreateTable(sql string) (*Table, error) {
	stmt, err := parseOne(sql)
	if err != nil {
		return nil, err
	}
	create, ok := stmt.(*ast.CreateTableStmt)
	if !ok {
		return nil, fmt.Errorf("expected CREATE TABLE statement, got %T", stmt)
	}

	table := &Table{
		Name:    create.Table.Name.O,
		Columns: make([]Column, 0, len(create.Cols)),
	}

	for _, def := range create.Cols {
		col, err := convertColumnDef(def)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", def.Name.Name.O, err)
		}
		table.Columns = append(table.Columns, col)
	}

	// Table level constraints are folded into the columns they cover.
	for _, c := range create.Constraints {
		if err := applyTableConstraint(table, c); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// ParseCreateView parses a single CREATE VIEW statement. Column types are inferred from tables
// when the view selects plain columns from a single table; otherwise View.Columns stays nil.
func ParseCreateView(sql string, tables []Table) (*View, error) {
	stmt, err := parseOne(sql)
	if err != nil {
		return nil, err
	}
	create, ok := stmt.(*ast.CreateViewStmt)
	if !ok {
		return nil, fmt.Errorf("expected CREATE VIEW statement, got %T", stmt)
	}

	query := strings.TrimSpace(create.Select.Text())
	if query == "" {
		if query, err = restore(create.Select, format.DefaultRestoreFlags); err != nil {
			return nil, err
		}
	}

	view := &View{
		Name:  create.ViewName.Name.O,
		Query: query,
	}

	if sel, ok := create.Select.(*ast.SelectStmt); ok {
		view.Columns = inferViewColumns(sel, tables)
	}

	if view.Columns != nil && len(create.Cols) > 0 {
		if len(create.Cols) != len(view.Columns) {
			return nil, fmt.Errorf("view %s: %d column names for %d columns", view.Name, len(create.Cols), len(view.Columns))
		}
		for i, name := range create.Cols {
			view.Columns[i].Name = name.O
		}
	}

	return view, nil
}

// parseOne accepts double quoted identifiers, as printed by SHOW CREATE under ANSI_QUOTES.
func parseOne(sql string) (ast.StmtNode, error) {
	p := parser.New()
	p.SetSQLMode(mysql.ModeANSIQuotes)
	stmt, err := p.ParseOneStmt(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("SQL parse error: %w", err)
	}
	return stmt, nil
}

func restore(node ast.Node, flags format.RestoreFlags) (string, error) {
	var sb strings.Builder
	if err := node.Restore(format.NewRestoreCtx(flags, &sb)); err != nil {
		return "", fmt.Errorf("SQL restore error: %w", err)
	}
	return sb.String(), nil
}

func convertColumnDef(def *ast.ColumnDef) (Column, error) {
	col := Column{Name: def.Name.Name.O}
	if def.Tp != nil {
		col.DataType = DataTypeFromDeclared(def.Tp.CompactStr())
	}

	for _, opt := range def.Options {
		switch opt.Tp {
		case ast.ColumnOptionPrimaryKey:
			col.Options = append(col.Options, Unique{IsPrimary: true})
		case ast.ColumnOptionUniqKey:
			col.Options = append(col.Options, Unique{IsPrimary: false})
		case ast.ColumnOptionNotNull:
			col.Options = append(col.Options, NotNull{})
		case ast.ColumnOptionDefaultValue:
			expr, err := restore(opt.Expr, exprRestoreFlags)
			if err != nil {
				return col, err
			}
			col.Options = append(col.Options, Default{Expr: expr})
		case ast.ColumnOptionCheck:
			expr, err := restore(opt.Expr, exprRestoreFlags)
			if err != nil {
				return col, err
			}
			col.Options = append(col.Options, Check{Expr: expr})
		case ast.ColumnOptionReference:
			col.Options = append(col.Options, convertReference(opt.Refer))
		}
	}

	return col, nil
}

func convertReference(ref *ast.ReferenceDef) ForeignKey {
	fk := ForeignKey{ForeignTable: ref.Table.Name.O}
	for _, part := range ref.IndexPartSpecifications {
		if part.Column != nil {
			fk.ReferredColumns = append(fk.ReferredColumns, part.Column.Name.O)
		}
	}
	if ref.OnDelete != nil {
		fk.OnDelete = ref.OnDelete.ReferOpt.String()
	}
	if ref.OnUpdate != nil {
		fk.OnUpdate = ref.OnUpdate.ReferOpt.String()
	}
	return fk
}

func applyTableConstraint(table *Table, c *ast.Constraint) error {
	keys := make([]string, 0, len(c.Keys))
	for _, k := range c.Keys {
		if k.Column != nil {
			keys = append(keys, k.Column.Name.O)
		}
	}

	target := func() (*Column, error) {
		if len(keys) != 1 {
			return nil, nil
		}
		_, col, ok := FindColumn(table.Columns, keys[0])
		if !ok {
			return nil, fmt.Errorf("constraint references unknown column %s", keys[0])
		}
		return col, nil
	}

	switch c.Tp {
	case ast.ConstraintPrimaryKey, ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
		// Composite keys cannot serve as a record key and are not tracked per column.
		col, err := target()
		if err != nil || col == nil {
			return err
		}
		col.Options = append(col.Options, Unique{IsPrimary: c.Tp == ast.ConstraintPrimaryKey})
	case ast.ConstraintForeignKey:
		col, err := target()
		if err != nil || col == nil {
			return err
		}
		col.Options = append(col.Options, convertReference(c.Refer))
	case ast.ConstraintCheck:
		expr, err := restore(c.Expr, exprRestoreFlags)
		if err != nil {
			return err
		}
		// Table level checks are attached to the first column they reference, if any.
		refs := &columnRefCollector{}
		c.Expr.Accept(refs)
		for _, name := range refs.names {
			if _, col, ok := FindColumn(table.Columns, name); ok {
				col.Options = append(col.Options, Check{Expr: expr})
				break
			}
		}
	}
	return nil
}

// columnRefCollector records the column names an expression references, in source order.
type columnRefCollector struct {
	names []string
}

func (v *columnRefCollector) Enter(n ast.Node) (ast.Node, bool) {
	if ref, ok := n.(*ast.ColumnNameExpr); ok {
		v.names = append(v.names, ref.Name.Name.O)
		return n, true
	}
	return n, false
}

func (v *columnRefCollector) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}

func inferViewColumns(sel *ast.SelectStmt, tables []Table) []Column {
	if sel.From == nil || sel.From.TableRefs == nil || sel.From.TableRefs.Right != nil {
		return nil
	}
	ts, ok := sel.From.TableRefs.Left.(*ast.TableSource)
	if !ok {
		return nil
	}
	tn, ok := ts.Source.(*ast.TableName)
	if !ok {
		return nil
	}
	table, ok := FindTable(tables, tn.Name.O)
	if !ok || sel.Fields == nil {
		return nil
	}

	var columns []Column
	for _, field := range sel.Fields.Fields {
		if field.WildCard != nil {
			columns = append(columns, table.Columns...)
			continue
		}
		ref, ok := field.Expr.(*ast.ColumnNameExpr)
		if !ok {
			return nil
		}
		_, col, ok := FindColumn(table.Columns, ref.Name.Name.O)
		if !ok {
			return nil
		}
		c := *col
		if field.AsName.O != "" {
			c.Name = field.AsName.O
		}
		columns = append(columns, c)
	}
	return columns
}
