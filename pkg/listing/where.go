package listing

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/recordbase/backend/pkg/schema"
)

// WhereClauseErrorKind classifies filter compilation failures.
type WhereClauseErrorKind int

const (
	ErrUnrecognizedParam WhereClauseErrorKind = iota
)

// WhereClauseError rejects a filter that must not be silently ignored.
type WhereClauseError struct {
	Kind    WhereClauseErrorKind
	Message string
}

func (e *WhereClauseError) Error() string {
	return e.Message
}

// NamedParam binds Value to the placeholder ":" + Name.
type NamedParam struct {
	Name  string
	Value any
}

// WhereClause is a compiled filter predicate. Every placeholder in Clause has exactly one
// entry in Params.
type WhereClause struct {
	Clause string
	Params []NamedParam
}

// BuildFilterWhereClause compiles filters into a predicate over tableName. Filter keys are
// checked against columns, which is the only source of identifiers interpolated into the
// clause. Filters with an unknown operator or an unconvertible value are dropped.
func BuildFilterWhereClause(tableName string, columns []schema.Column, filters *Filters) (*WhereClause, error) {
	var (
		clauses []string
		params  []NamedParam
	)
	used := make(map[string]bool)

	for _, key := range filters.Columns() {
		if strings.HasPrefix(key, "_") {
			return nil, &WhereClauseError{Kind: ErrUnrecognizedParam, Message: fmt.Sprintf("Invalid parameter: %s", key)}
		}
		_, col, ok := schema.FindColumn(columns, key)
		if !ok {
			return nil, &WhereClauseError{Kind: ErrUnrecognizedParam, Message: fmt.Sprintf("Unrecognized parameter: %s", key)}
		}

		for _, p := range filters.Get(key) {
			if p.Qualifier == QualifierNone {
				log.Printf("⚠️ Dropping filter on %s: unsupported operator", key)
				continue
			}
			value, err := schema.ParseValue(col.DataType, p.Value)
			if err != nil {
				log.Printf("⚠️ Dropping filter on %s: %v", key, err)
				continue
			}

			name := placeholderName(key, used)
			clauses = append(clauses, fmt.Sprintf(`%s.%s %s :%s`, quoteIdent(tableName), quoteIdent(key), p.Qualifier.SQL(), name))
			params = append(params, NamedParam{Name: name, Value: value})
		}
	}

	if len(clauses) == 0 {
		return &WhereClause{Clause: "TRUE", Params: []NamedParam{}}, nil
	}
	return &WhereClause{Clause: strings.Join(clauses, " AND "), Params: params}, nil
}

// placeholderName derives a name from column that is not in used yet, and marks it used. The
// first occurrence gets the bare name, later ones a _2, _3, ... suffix.
func placeholderName(column string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return '_'
	}, column)

	name := base
	for n := 2; used[name]; n++ {
		name = base + "_" + strconv.Itoa(n)
	}
	used[name] = true
	return name
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
