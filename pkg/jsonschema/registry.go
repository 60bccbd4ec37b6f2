// Package jsonschema provides a registry of named, compiled JSON schemas used to validate
// JSON columns.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/recordbase/backend/pkg/constants"
)

// Registry resolves schema names to compiled schemas. Implementations must be safe for
// concurrent readers.
type Registry interface {
	Get(name string) (*Schema, bool)
	Names() []string
}

// Schema is a compiled JSON schema together with its source document.
type Schema struct {
	Name     string
	Document string
	compiled *jsonschema.Schema
}

// Validate validates a decoded JSON value (as produced by encoding/json) against the schema.
func (s *Schema) Validate(value any) error {
	return s.compiled.Validate(value)
}

// MemoryRegistry holds registered schemas in memory
type MemoryRegistry struct {
	schemas map[string]*Schema
	mu      sync.RWMutex
}

// NewRegistry creates a registry pre-populated with the built-in schemas.
func NewRegistry() *MemoryRegistry {
	r := &MemoryRegistry{
		schemas: make(map[string]*Schema),
	}
	r.registerBuiltins()
	return r
}

// Register compiles document and stores it under name, replacing any previous entry.
func (r *MemoryRegistry) Register(name, document string) error {
	compiled, err := compile(name, document)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = &Schema{Name: name, Document: document, compiled: compiled}
	return nil
}

// Get returns a schema by name
func (r *MemoryRegistry) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns all registered schema names, sorted.
func (r *MemoryRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompileDocument compiles an already decoded JSON schema document.
func CompileDocument(document any) (*Schema, error) {
	raw, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("schema compile error: %w", err)
	}
	compiled, err := compile("inline", string(raw))
	if err != nil {
		return nil, err
	}
	return &Schema{Name: "inline", Document: string(raw), compiled: compiled}, nil
}

func compile(name, document string) (*jsonschema.Schema, error) {
	url := "mem://schemas/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, strings.NewReader(document)); err != nil {
		return nil, fmt.Errorf("schema compile error for %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema compile error for %s: %w", name, err)
	}
	return compiled, nil
}

func (r *MemoryRegistry) registerBuiltins() {
	for name, doc := range map[string]string{
		constants.SchemaFileUpload:  fileUploadSchema,
		constants.SchemaFileUploads: fileUploadsSchema,
	} {
		if err := r.Register(name, doc); err != nil {
			// Built-in documents are constants, failing here is a programming error.
			panic(err)
		}
	}
}

const fileUploadSchema = `{
  "type": "object",
  "properties": {
    "id": { "type": "string" },
    "filename": { "type": "string" },
    "content_type": { "type": "string" },
    "mime_type": { "type": "string" }
  },
  "required": ["id"]
}`

const fileUploadsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id": { "type": "string" },
      "filename": { "type": "string" },
      "content_type": { "type": "string" },
      "mime_type": { "type": "string" }
    },
    "required": ["id"]
  }
}`
