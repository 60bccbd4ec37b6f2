// Package listing parses list query strings and compiles their column filters into
// parameterized SQL predicates.
//
// An example query may look like:
//
//	?cursor=<id>&limit=50&order=price,-date&price[lte]=100&date[gte]=<timestamp>
package listing

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/recordbase/backend/pkg/constants"
)

// Splits the key of "column[op]=value" into column and op. Column characters are the letters,
// digits and '_' that sanitizeColumnName also accepts.
var qualifierRegex = regexp.MustCompile(`^(?P<key>[\p{L}\p{Nd}_]*)(?:\[(?P<qualifier>\w+)\])?$`)

// Order is a sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return constants.SortDESC
	}
	return constants.SortASC
}

// OrderBy is one entry of the order parameter.
type OrderBy struct {
	Column string
	Order  Order
}

// QueryParam is one filter occurrence. Value is the decoded raw string; it is never escaped
// and only ever bound as a parameter.
type QueryParam struct {
	Value     string
	Qualifier Qualifier
}

// Filters maps column names to their filter occurrences. Columns keep the order in which they
// first appeared and occurrences of one column keep arrival order, e.g. for
// "col[gte]=2&col[lte]=10".
type Filters struct {
	columns []string
	params  map[string][]QueryParam
}

// Add appends p to the occurrences of column.
func (f *Filters) Add(column string, p QueryParam) {
	if f.params == nil {
		f.params = make(map[string][]QueryParam)
	}
	if _, ok := f.params[column]; !ok {
		f.columns = append(f.columns, column)
	}
	f.params[column] = append(f.params[column], p)
}

// Get returns the occurrences of column.
func (f *Filters) Get(column string) []QueryParam {
	if f == nil {
		return nil
	}
	return f.params[column]
}

// Columns returns the filtered columns in first-arrival order.
func (f *Filters) Columns() []string {
	if f == nil {
		return nil
	}
	return f.columns
}

// Len returns the number of distinct filtered columns.
func (f *Filters) Len() int {
	if f == nil {
		return 0
	}
	return len(f.columns)
}

// QueryParseResult holds the list related parameters of one request. Pointer and slice fields
// are nil when the parameter was absent or unusable.
type QueryParseResult struct {
	// Pagination parameters.
	Limit  *int
	Cursor Cursor
	Offset *int
	Count  *bool
	Expand []string

	// Ordering, e.g. for "order=-col0,+col1,col2".
	Order []OrderBy

	Filters *Filters
}

// ParseError reports the query key or token that made parsing fail.
type ParseError struct {
	Key string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid query parameter: %s", e.Key)
}

// ParseAndSanitizeQuery parses the list related parameters of a raw query string: pagination,
// ordering, expansion and column filters. Column names are checked to only contain
// alphanumerics, '.', '-' and '_'. Unparsable optional values are ignored; malformed keys,
// unsafe names and empty filter values fail the whole parse.
func ParseAndSanitizeQuery(query string) (*QueryParseResult, error) {
	result := &QueryParseResult{}
	if query == "" {
		return result, nil
	}

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key := decodeComponent(rawKey)
		value := decodeComponent(rawValue)

		switch key {
		case constants.ParamLimit:
			result.Limit = parseNonNegative(value)
		case constants.ParamCursor:
			result.Cursor, _ = ParseCursor(value)
		case constants.ParamOffset:
			result.Offset = parseNonNegative(value)
		case constants.ParamCount:
			result.Count = parseBool(value)
		case constants.ParamExpand:
			columns, err := parseExpand(value)
			if err != nil {
				return nil, err
			}
			result.Expand = columns
		case constants.ParamOrder:
			order, err := parseOrder(value)
			if err != nil {
				return nil, err
			}
			result.Order = order
		default:
			// Not a reserved key, thus a column filter, optionally qualified: column[op]=value.
			column, op, hasOp, ok := splitKeyIntoColumnAndOp(key)
			if !ok || column == "" || !sanitizeColumnName(column) {
				return nil, &ParseError{Key: key}
			}
			if value == "" {
				return nil, &ParseError{Key: key}
			}

			if result.Filters == nil {
				result.Filters = &Filters{}
			}
			result.Filters.Add(column, QueryParam{
				Value:     value,
				Qualifier: qualifierFromToken(op, hasOp),
			})
		}
	}

	return result, nil
}

// decodeComponent applies form decoding: '+' is a space and %XX sequences are unescaped.
// Invalid escapes are kept verbatim.
func decodeComponent(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return strings.ReplaceAll(s, "+", " ")
	}
	return decoded
}

func parseNonNegative(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parseBool(s string) *bool {
	var b bool
	switch strings.ToLower(s) {
	case "true", "1":
		b = true
	case "false", "0":
		b = false
	default:
		return nil
	}
	return &b
}

func parseExpand(value string) ([]string, error) {
	var columns []string
	for _, name := range strings.Split(value, ",") {
		if name == "" {
			continue
		}
		if !sanitizeColumnName(name) {
			return nil, &ParseError{Key: name}
		}
		columns = append(columns, name)
	}
	return columns, nil
}

func parseOrder(value string) ([]OrderBy, error) {
	var order []OrderBy
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		ob := OrderBy{Column: entry, Order: Ascending}
		switch {
		case strings.HasPrefix(entry, "-"):
			ob = OrderBy{Column: entry[1:], Order: Descending}
		case strings.HasPrefix(entry, "+"):
			ob.Column = entry[1:]
		}
		if ob.Column == "" {
			continue
		}
		if !sanitizeColumnName(ob.Column) {
			return nil, &ParseError{Key: ob.Column}
		}
		order = append(order, ob)
	}
	return order, nil
}

// sanitizeColumnName is conservative: quoting alone would only require rejecting quotes and
// brackets.
func sanitizeColumnName(name string) bool {
	for _, c := range name {
		if !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '.' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

func splitKeyIntoColumnAndOp(key string) (column, op string, hasOp, ok bool) {
	m := qualifierRegex.FindStringSubmatch(key)
	if m == nil {
		return "", "", false, false
	}
	column = m[qualifierRegex.SubexpIndex("key")]
	op = m[qualifierRegex.SubexpIndex("qualifier")]
	// The qualifier group requires \w+, so an empty match means no brackets.
	return column, op, op != "", true
}
