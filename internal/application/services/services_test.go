package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recordbase/backend/internal/infrastructure/persistence"
	"github.com/recordbase/backend/pkg/query"
)

// MockSchemaLoader is a mock implementation of SchemaLoader
type MockSchemaLoader struct {
	mock.Mock
}

func (m *MockSchemaLoader) LoadDDL(ctx context.Context) ([]persistence.RelationDDL, error) {
	args := m.Called(ctx)
	if ddl := args.Get(0); ddl != nil {
		return ddl.([]persistence.RelationDDL), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRecordStore is a mock implementation of RecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) List(ctx context.Context, q query.QueryResult, blobColumns map[string]bool) ([]query.Record, error) {
	args := m.Called(ctx, q, blobColumns)
	if records := args.Get(0); records != nil {
		return records.([]query.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecordStore) Count(ctx context.Context, q query.QueryResult) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

var testDDL = []persistence.RelationDDL{
	{
		Name: "_user",
		Type: persistence.RelationTable,
		DDL:  "CREATE TABLE `_user` (`id` BINARY(16) PRIMARY KEY CHECK (is_uuid_v7(`id`)), `email` VARCHAR(255) NOT NULL)",
	},
	{
		Name: "post",
		Type: persistence.RelationTable,
		DDL: "CREATE TABLE `post` (" +
			"`id` INTEGER PRIMARY KEY, " +
			"`owner` BINARY(16) NOT NULL, " +
			"`title` VARCHAR(255), " +
			"`score` DOUBLE, " +
			"CONSTRAINT `fk_owner` FOREIGN KEY (`owner`) REFERENCES `_user` (`id`) ON DELETE CASCADE)",
	},
	{
		Name: "profile",
		Type: persistence.RelationTable,
		DDL: "CREATE TABLE `profile` (" +
			"`id` INTEGER PRIMARY KEY, " +
			"`avatar` JSON CHECK (jsonschema('std.FileUpload', `avatar`)), " +
			"`meta` TEXT CHECK (jsonschema_matches(`meta`, '{\"type\":\"object\",\"required\":[\"a\"]}')))",
	},
	{
		Name: "post_titles",
		Type: persistence.RelationView,
		DDL:  "CREATE VIEW `post_titles` AS SELECT `id`, `title` AS `name` FROM `post`",
	},
	{
		Name: "post_stats",
		Type: persistence.RelationView,
		DDL:  "CREATE VIEW `post_stats` AS SELECT COUNT(*) AS `n` FROM `post`",
	},
}

func newTestSchemaService(ddl []persistence.RelationDDL) (*SchemaService, *MockSchemaLoader) {
	loader := new(MockSchemaLoader)
	loader.On("LoadDDL", mock.Anything).Return(ddl, nil)
	return NewSchemaService(loader, newTestRegistry(), "_user"), loader
}
