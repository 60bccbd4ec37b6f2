package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/recordbase/backend/pkg/listing"
)

// QueryResult represents the built SQL query and parameters
type QueryResult struct {
	SQL    string
	Params []interface{}
}

// Builder is a fluent SELECT builder over a single table or view. Identifiers are quoted
// ANSI style, so the connection must run with sql_mode ANSI_QUOTES.
type Builder struct {
	table   string
	columns []string
	where   []sq.Sqlizer
	orderBy []string
	limit   *uint64
	offset  *uint64
	err     error
}

// From creates a new SELECT query builder
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select restricts the selected columns. All columns are selected by default.
func (b *Builder) Select(columns ...string) *Builder {
	for _, col := range columns {
		b.columns = append(b.columns, QuoteIdent(b.table)+"."+QuoteIdent(col))
	}
	return b
}

// Where adds a condition with positional '?' parameters
func (b *Builder) Where(condition string, params ...interface{}) *Builder {
	if condition != "" {
		b.where = append(b.where, sq.Expr(condition, params...))
	}
	return b
}

// WhereNamed adds a condition using ':name' placeholders, e.g. a compiled filter clause.
func (b *Builder) WhereNamed(clause string, params []listing.NamedParam) *Builder {
	sql, args, err := BindNamed(clause, params)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	return b.Where(sql, args...)
}

// OrderBy appends an ORDER BY term
func (b *Builder) OrderBy(column string, order listing.Order) *Builder {
	b.orderBy = append(b.orderBy, fmt.Sprintf("%s.%s %s", QuoteIdent(b.table), QuoteIdent(column), order))
	return b
}

// Limit adds LIMIT clause
func (b *Builder) Limit(n int) *Builder {
	v := uint64(n)
	b.limit = &v
	return b
}

// Offset adds OFFSET clause
func (b *Builder) Offset(n int) *Builder {
	v := uint64(n)
	b.offset = &v
	return b
}

// Build constructs the SELECT query
func (b *Builder) Build() (QueryResult, error) {
	if b.err != nil {
		return QueryResult{}, b.err
	}

	columns := b.columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	sb := b.base(columns...).OrderBy(b.orderBy...)
	if b.limit != nil {
		sb = sb.Limit(*b.limit)
	}
	if b.offset != nil {
		sb = sb.Offset(*b.offset)
	}
	return toResult(sb)
}

// BuildCount constructs a COUNT(*) query over the same conditions, ignoring order and
// pagination.
func (b *Builder) BuildCount() (QueryResult, error) {
	if b.err != nil {
		return QueryResult{}, b.err
	}
	return toResult(b.base("COUNT(*)"))
}

func (b *Builder) base(columns ...string) sq.SelectBuilder {
	sb := sq.Select(columns...).From(QuoteIdent(b.table))
	for _, w := range b.where {
		sb = sb.Where(w)
	}
	return sb
}

func toResult(sb sq.SelectBuilder) (QueryResult, error) {
	sql, params, err := sb.ToSql()
	if err != nil {
		return QueryResult{}, fmt.Errorf("failed to build query: %w", err)
	}
	if params == nil {
		params = []interface{}{}
	}
	return QueryResult{SQL: sql, Params: params}, nil
}

// QuoteIdent quotes an identifier with double quotes
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// BindNamed rewrites ':name' placeholders into positional '?' and returns the values in
// placeholder order. Quoted strings and identifiers are left untouched. Every placeholder
// must have a parameter.
func BindNamed(clause string, params []listing.NamedParam) (string, []interface{}, error) {
	values := make(map[string]interface{}, len(params))
	for _, p := range params {
		values[p.Name] = p.Value
	}

	var (
		out   strings.Builder
		args  = make([]interface{}, 0, len(params))
		quote byte
	)
	for i := 0; i < len(clause); i++ {
		c := clause[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			out.WriteByte(c)
		case c == '\'' || c == '"' || c == '`':
			quote = c
			out.WriteByte(c)
		case c == ':' && i+1 < len(clause) && isNameByte(clause[i+1]):
			j := i + 1
			for j < len(clause) && isNameByte(clause[j]) {
				j++
			}
			name := clause[i+1 : j]
			v, ok := values[name]
			if !ok {
				return "", nil, fmt.Errorf("missing value for placeholder :%s", name)
			}
			args = append(args, v)
			out.WriteByte('?')
			i = j - 1
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), args, nil
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
