package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordbase/backend/pkg/schema"
)

func testColumns() []schema.Column {
	return []schema.Column{
		{Name: "id", DataType: schema.DataTypeBlob, Options: []schema.ColumnOption{schema.Unique{IsPrimary: true}}},
		{Name: "price", DataType: schema.DataTypeInteger},
		{Name: "score", DataType: schema.DataTypeReal},
		{Name: "name", DataType: schema.DataTypeText},
		{Name: "_owner", DataType: schema.DataTypeBlob},
		{Name: "my-col", DataType: schema.DataTypeText},
		{Name: "my_col", DataType: schema.DataTypeText},
	}
}

func compile(t *testing.T, query string) (*WhereClause, error) {
	t.Helper()
	parsed, err := ParseAndSanitizeQuery(query)
	require.NoError(t, err)
	return BuildFilterWhereClause("items", testColumns(), parsed.Filters)
}

func TestBuildFilterWhereClause_NoFilters(t *testing.T) {
	clause, err := BuildFilterWhereClause("items", testColumns(), nil)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", clause.Clause)
	assert.Empty(t, clause.Params)

	clause, err = compile(t, "limit=5&order=price")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", clause.Clause)
	assert.Empty(t, clause.Params)
}

func TestBuildFilterWhereClause_SingleFilter(t *testing.T) {
	clause, err := compile(t, "name=Alice")
	require.NoError(t, err)
	assert.Equal(t, `"items"."name" = :name`, clause.Clause)
	assert.Equal(t, []NamedParam{{Name: "name", Value: "Alice"}}, clause.Params)
}

func TestBuildFilterWhereClause_Range(t *testing.T) {
	clause, err := compile(t, "price[gte]=10&price[lte]=100")
	require.NoError(t, err)
	assert.Equal(t, `"items"."price" >= :price AND "items"."price" <= :price_2`, clause.Clause)
	assert.Equal(t, []NamedParam{
		{Name: "price", Value: int64(10)},
		{Name: "price_2", Value: int64(100)},
	}, clause.Params)
}

func TestBuildFilterWhereClause_Operators(t *testing.T) {
	clause, err := compile(t, "name[like]=A%25&score[gt]=1.5&price[ne]=3&name[re]=^A")
	require.NoError(t, err)
	assert.Equal(t,
		`"items"."name" LIKE :name AND "items"."name" REGEXP :name_2 AND "items"."score" > :score AND "items"."price" <> :price`,
		clause.Clause)
	assert.Equal(t, []NamedParam{
		{Name: "name", Value: "A%"},
		{Name: "name_2", Value: "^A"},
		{Name: "score", Value: 1.5},
		{Name: "price", Value: int64(3)},
	}, clause.Params)
}

func TestBuildFilterWhereClause_DropsUnusableFilters(t *testing.T) {
	clause, err := compile(t, "price=abc&name[foo]=x")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", clause.Clause)
	assert.Empty(t, clause.Params)

	clause, err = compile(t, "price=abc&price[lt]=7")
	require.NoError(t, err)
	assert.Equal(t, `"items"."price" < :price`, clause.Clause)
	assert.Equal(t, []NamedParam{{Name: "price", Value: int64(7)}}, clause.Params)
}

func TestBuildFilterWhereClause_BlobValue(t *testing.T) {
	clause, err := compile(t, "id=01890a5d-ac96-774b-bcce-b302099a8057")
	require.NoError(t, err)
	require.Len(t, clause.Params, 1)
	assert.Len(t, clause.Params[0].Value, 16)
}

func TestBuildFilterWhereClause_PlaceholderCollision(t *testing.T) {
	filters := &Filters{}
	filters.Add("my-col", QueryParam{Value: "a", Qualifier: QualifierEqual})
	filters.Add("my_col", QueryParam{Value: "b", Qualifier: QualifierEqual})

	clause, err := BuildFilterWhereClause("items", testColumns(), filters)
	require.NoError(t, err)
	assert.Equal(t, `"items"."my-col" = :my_col AND "items"."my_col" = :my_col_2`, clause.Clause)
	assert.Equal(t, []NamedParam{
		{Name: "my_col", Value: "a"},
		{Name: "my_col_2", Value: "b"},
	}, clause.Params)
}

func TestBuildFilterWhereClause_RejectsUnknownColumn(t *testing.T) {
	for _, value := range []string{"1", "x", "%27"} {
		_, err := compile(t, "missing="+value)
		var whereErr *WhereClauseError
		require.ErrorAs(t, err, &whereErr)
		assert.Equal(t, ErrUnrecognizedParam, whereErr.Kind)
		assert.Equal(t, "Unrecognized parameter: missing", whereErr.Error())
	}
}

func TestBuildFilterWhereClause_RejectsReservedColumn(t *testing.T) {
	// _owner exists, but underscore prefixed names are never filterable.
	_, err := compile(t, "price=1&_owner=x")
	var whereErr *WhereClauseError
	require.ErrorAs(t, err, &whereErr)
	assert.Equal(t, "Invalid parameter: _owner", whereErr.Error())
}

func TestBuildFilterWhereClause_EveryPlaceholderBound(t *testing.T) {
	clause, err := compile(t, "price[gt]=1&price[lt]=9&price[ne]=5&name=x&score=2")
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, p := range clause.Params {
		assert.False(t, seen[p.Name], "duplicate placeholder %s", p.Name)
		seen[p.Name] = true
		assert.Contains(t, clause.Clause, ":"+p.Name)
	}
	assert.Len(t, clause.Params, 5)
}

func TestBuildFilterWhereClause_QuotesTableName(t *testing.T) {
	parsed, err := ParseAndSanitizeQuery("price[gte]=3")
	require.NoError(t, err)

	clause, err := BuildFilterWhereClause("order", testColumns(), parsed.Filters)
	require.NoError(t, err)
	assert.Equal(t, `"order"."price" >= :price`, clause.Clause)

	clause, err = BuildFilterWhereClause("line-items", testColumns(), parsed.Filters)
	require.NoError(t, err)
	assert.Equal(t, `"line-items"."price" >= :price`, clause.Clause)
}

func TestBuildFilterWhereClause_Idempotent(t *testing.T) {
	parsed, err := ParseAndSanitizeQuery("name[like]=%25a%25&price[gt]=1&price[lt]=9&score=2.5&my_col=x")
	require.NoError(t, err)

	first, err := BuildFilterWhereClause("items", testColumns(), parsed.Filters)
	require.NoError(t, err)
	second, err := BuildFilterWhereClause("items", testColumns(), parsed.Filters)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Params, 5)
}
