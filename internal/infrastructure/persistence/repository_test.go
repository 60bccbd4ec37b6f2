package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordbase/backend/pkg/query"
)

func TestSchemaRepository_LoadDDL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SHOW FULL TABLES").WillReturnRows(
		sqlmock.NewRows([]string{"Tables_in_recordbase", "Table_type"}).
			AddRow("active_posts", "VIEW").
			AddRow("post", "BASE TABLE").
			AddRow("seq", "SEQUENCE"),
	)
	mock.ExpectQuery(regexp.QuoteMeta(`SHOW CREATE VIEW "active_posts"`)).WillReturnRows(
		sqlmock.NewRows([]string{"View", "Create View", "character_set_client", "collation_connection"}).
			AddRow("active_posts", "CREATE VIEW active_posts AS SELECT * FROM post", "utf8mb4", "utf8mb4_bin"),
	)
	mock.ExpectQuery(regexp.QuoteMeta(`SHOW CREATE TABLE "post"`)).WillReturnRows(
		sqlmock.NewRows([]string{"Table", "Create Table"}).
			AddRow("post", "CREATE TABLE post (id INT PRIMARY KEY)"),
	)

	relations, err := NewSchemaRepository(db).LoadDDL(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []RelationDDL{
		{Name: "post", Type: RelationTable, DDL: "CREATE TABLE post (id INT PRIMARY KEY)"},
		{Name: "active_posts", Type: RelationView, DDL: "CREATE VIEW active_posts AS SELECT * FROM post"},
	}, relations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepository_LoadDDLError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SHOW FULL TABLES").WillReturnRows(
		sqlmock.NewRows([]string{"Tables_in_recordbase", "Table_type"}).AddRow("post", "BASE TABLE"),
	)
	mock.ExpectQuery("SHOW CREATE TABLE").WillReturnError(errors.New("access denied"))

	_, err = NewSchemaRepository(db).LoadDDL(context.Background())
	assert.ErrorContains(t, err, "post")
}

func TestRecordRepository_ListAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "post" WHERE "post"."n" > ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "n"}).AddRow(int64(1), []byte("2")))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "post"`)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(12)))

	repo := NewRecordRepository(db)
	records, err := repo.List(context.Background(), query.QueryResult{
		SQL:    `SELECT * FROM "post" WHERE "post"."n" > ?`,
		Params: []interface{}{int64(1)},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []query.Record{{"id": int64(1), "n": "2"}}, records)

	count, err := repo.Count(context.Background(), query.QueryResult{SQL: `SELECT COUNT(*) FROM "post"`})
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
