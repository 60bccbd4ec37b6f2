package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recordbase/backend/internal/infrastructure/persistence"
	"github.com/recordbase/backend/pkg/jsonschema"
)

func newTestRegistry() jsonschema.Registry {
	return jsonschema.NewRegistry()
}

func TestSchemaService_Refresh(t *testing.T) {
	svc, loader := newTestSchemaService(testDDL)

	_, ok := svc.Snapshot().Lookup("post")
	assert.False(t, ok, "empty before the first refresh")

	changed, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	snapshot := svc.Snapshot()
	assert.Len(t, snapshot.Tables, 3)
	assert.Len(t, snapshot.Views, 2)

	post, ok := snapshot.TableMetadata("post")
	require.True(t, ok)
	idx, col, ok := post.RecordPKColumn()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "id", col.Name)
	assert.Equal(t, []int{1}, post.UserIDColumns())

	user, ok := snapshot.TableMetadata("_user")
	require.True(t, ok)
	idx, _, ok = user.RecordPKColumn()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	titles, ok := snapshot.ViewMetadata("post_titles")
	require.True(t, ok)
	require.Len(t, titles.Columns(), 2)
	assert.Equal(t, "name", titles.Columns()[1].Name)
	_, _, ok = titles.RecordPKColumn()
	assert.True(t, ok)

	stats, ok := snapshot.Lookup("post_stats")
	require.True(t, ok)
	assert.Nil(t, stats.Columns())

	// Unchanged DDL keeps the snapshot.
	changed, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, snapshot, svc.Snapshot())
	loader.AssertNumberOfCalls(t, "LoadDDL", 2)
}

func TestSchemaService_RefreshSkipsUnparsable(t *testing.T) {
	ddl := append([]persistence.RelationDDL{
		{Name: "broken", Type: persistence.RelationTable, DDL: "CREATE TABLE broken ("},
	}, testDDL...)
	svc, _ := newTestSchemaService(ddl)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	_, ok := svc.Snapshot().Lookup("broken")
	assert.False(t, ok)
	_, ok = svc.Snapshot().Lookup("post")
	assert.True(t, ok)
}

func TestSchemaService_RefreshError(t *testing.T) {
	loader := new(MockSchemaLoader)
	loader.On("LoadDDL", mock.Anything).Return(nil, errors.New("connection refused"))
	svc := NewSchemaService(loader, newTestRegistry(), "_user")

	changed, err := svc.Refresh(context.Background())
	assert.Error(t, err)
	assert.False(t, changed)
	assert.NotNil(t, svc.Snapshot())
}

func TestSchemaRefresher(t *testing.T) {
	svc, _ := newTestSchemaService(testDDL)

	_, err := NewSchemaRefresher(svc, "not a cron")
	assert.Error(t, err)

	refresher, err := NewSchemaRefresher(svc, "@every 1h")
	require.NoError(t, err)
	refresher.run()
	_, ok := svc.Snapshot().Lookup("post")
	assert.True(t, ok)

	refresher.Start()
	refresher.Stop()
}
