package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/recordbase/backend/internal/infrastructure/persistence"
	"github.com/recordbase/backend/pkg/jsonschema"
	"github.com/recordbase/backend/pkg/metadata"
	"github.com/recordbase/backend/pkg/schema"
)

// SchemaLoader returns the CREATE statements of all tables and views
type SchemaLoader interface {
	LoadDDL(ctx context.Context) ([]persistence.RelationDDL, error)
}

// Snapshot is an immutable view of the schema and the fact sheets derived from it
type Snapshot struct {
	Tables []schema.Table
	Views  []schema.View

	tables map[string]*metadata.TableMetadata
	views  map[string]*metadata.ViewMetadata
	ddl    []persistence.RelationDDL
}

// TableMetadata returns the fact sheet of a table
func (s *Snapshot) TableMetadata(name string) (*metadata.TableMetadata, bool) {
	m, ok := s.tables[name]
	return m, ok
}

// ViewMetadata returns the fact sheet of a view
func (s *Snapshot) ViewMetadata(name string) (*metadata.ViewMetadata, bool) {
	m, ok := s.views[name]
	return m, ok
}

// Lookup returns the fact sheet of a table or view, tables first
func (s *Snapshot) Lookup(name string) (metadata.TableOrViewMetadata, bool) {
	if m, ok := s.tables[name]; ok {
		return m, true
	}
	if m, ok := s.views[name]; ok {
		return m, true
	}
	return nil, false
}

// SchemaService caches fact sheets for all relations. Readers never block: a refresh builds a
// new Snapshot and swaps it in.
type SchemaService struct {
	loader    SchemaLoader
	registry  jsonschema.Registry
	userTable string

	current atomic.Pointer[Snapshot]
	mu      sync.Mutex // serializes refreshes
}

// NewSchemaService creates a new SchemaService. Call Refresh before the first lookup.
func NewSchemaService(loader SchemaLoader, registry jsonschema.Registry, userTable string) *SchemaService {
	s := &SchemaService{
		loader:    loader,
		registry:  registry,
		userTable: userTable,
	}
	s.current.Store(buildSnapshot(nil, registry, userTable))
	return s
}

// Snapshot returns the current schema snapshot
func (s *SchemaService) Snapshot() *Snapshot {
	return s.current.Load()
}

// Registry returns the JSON schema registry fact sheets are built with
func (s *SchemaService) Registry() jsonschema.Registry {
	return s.registry
}

// Refresh reloads the DDL and rebuilds the snapshot if it changed. It reports whether a new
// snapshot was published.
func (s *SchemaService) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ddl, err := s.loader.LoadDDL(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load schema: %w", err)
	}

	if slices.Equal(ddl, s.current.Load().ddl) {
		return false, nil
	}

	snapshot := buildSnapshot(ddl, s.registry, s.userTable)
	s.current.Store(snapshot)
	log.Printf("📦 Schema loaded: %d tables, %d views", len(snapshot.Tables), len(snapshot.Views))
	return true, nil
}

// buildSnapshot parses all statements. Relations that fail to parse are logged and left out,
// so one exotic definition does not take down the whole API.
func buildSnapshot(ddl []persistence.RelationDDL, registry jsonschema.Registry, userTable string) *Snapshot {
	snapshot := &Snapshot{
		tables: make(map[string]*metadata.TableMetadata),
		views:  make(map[string]*metadata.ViewMetadata),
		ddl:    ddl,
	}

	for _, rel := range ddl {
		if rel.Type != persistence.RelationTable {
			continue
		}
		table, err := schema.ParseCreateTable(rel.DDL)
		if err != nil {
			log.Printf("⚠️ Skipping table %s: %v", rel.Name, err)
			continue
		}
		snapshot.Tables = append(snapshot.Tables, *table)
	}

	for _, rel := range ddl {
		if rel.Type != persistence.RelationView {
			continue
		}
		view, err := schema.ParseCreateView(rel.DDL, snapshot.Tables)
		if err != nil {
			log.Printf("⚠️ Skipping view %s: %v", rel.Name, err)
			continue
		}
		snapshot.Views = append(snapshot.Views, *view)
	}

	for _, table := range snapshot.Tables {
		snapshot.tables[table.Name] = metadata.NewTableMetadata(table, snapshot.Tables, userTable, registry)
	}
	for _, view := range snapshot.Views {
		snapshot.views[view.Name] = metadata.NewViewMetadata(view, snapshot.Tables, userTable, registry)
	}

	return snapshot
}
