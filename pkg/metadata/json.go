package metadata

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"

	"github.com/recordbase/backend/pkg/constants"
	"github.com/recordbase/backend/pkg/jsonschema"
	"github.com/recordbase/backend/pkg/schema"
)

var (
	// CHECK(jsonschema('name', col))
	schemaNameRegex = regexp.MustCompile(`(?is)jsonschema\s*\(\s*[\['"](?P<name>.*)[\]'"]\s*,.+?\)`)
	// CHECK(jsonschema_matches('{...}', col)) or MySQL's CHECK(json_schema_valid('{...}', col))
	schemaMatchesRegex = regexp.MustCompile(`(?is)(?:jsonschema_matches|json_schema_valid)\s*\(.+?(?P<pattern>\{.*\}).+?\)`)
)

// JSONSchemaErrorKind classifies JSONSchemaError.
type JSONSchemaErrorKind int

const (
	ErrSchemaCompile JSONSchemaErrorKind = iota
	ErrValidation
	ErrSchemaNotFound
	ErrJSONSerialization
)

// JSONSchemaError is returned when extracting or applying a JSON column schema fails.
type JSONSchemaError struct {
	Kind    JSONSchemaErrorKind
	Message string
	Err     error
}

func (e *JSONSchemaError) Error() string {
	switch e.Kind {
	case ErrSchemaCompile:
		return fmt.Sprintf("schema compile error: %s", e.Message)
	case ErrValidation:
		return "validation error"
	case ErrSchemaNotFound:
		return fmt.Sprintf("schema not found: %s", e.Message)
	default:
		return fmt.Sprintf("json serialization error: %s", e.Message)
	}
}

func (e *JSONSchemaError) Unwrap() error {
	return e.Err
}

// JSONColumnKind tells which of the two descriptor variants a JSONColumnMetadata holds.
type JSONColumnKind int

const (
	// JSONSchemaName refers to a schema registered by name.
	JSONSchemaName JSONColumnKind = iota
	// JSONPattern embeds a literal JSON schema document.
	JSONPattern
)

// JSONColumnMetadata is the validation rule extracted from a column's CHECK expression.
type JSONColumnMetadata struct {
	Kind       JSONColumnKind
	SchemaName string
	Pattern    any
}

// Validate validates a decoded JSON value against the column's schema.
func (m *JSONColumnMetadata) Validate(registry jsonschema.Registry, value any) error {
	var s *jsonschema.Schema
	switch m.Kind {
	case JSONSchemaName:
		found, ok := registry.Get(m.SchemaName)
		if !ok {
			return &JSONSchemaError{Kind: ErrSchemaNotFound, Message: m.SchemaName}
		}
		s = found
	default:
		compiled, err := jsonschema.CompileDocument(m.Pattern)
		if err != nil {
			return &JSONSchemaError{Kind: ErrSchemaCompile, Message: err.Error(), Err: err}
		}
		s = compiled
	}

	if err := s.Validate(value); err != nil {
		return &JSONSchemaError{Kind: ErrValidation, Err: err}
	}
	return nil
}

// JSONMetadata holds the JSON validation rules of a relation, aligned with its column order.
type JSONMetadata struct {
	// Columns[i] is nil when column i carries no JSON schema.
	Columns []*JSONColumnMetadata

	fileColumnIndexes []int
}

func newJSONMetadata(columns []schema.Column, registry jsonschema.Registry) *JSONMetadata {
	md := &JSONMetadata{Columns: make([]*JSONColumnMetadata, len(columns))}
	for i := range columns {
		md.Columns[i] = buildJSONColumnMetadata(&columns[i], registry)
	}
	md.fileColumnIndexes = findFileColumnIndexes(md.Columns)
	return md
}

// HasFileColumns reports whether any column holds file uploads.
func (m *JSONMetadata) HasFileColumns() bool {
	return len(m.fileColumnIndexes) > 0
}

// FileColumnIndexes returns the indexes of columns validated by std.FileUpload or
// std.FileUploads. The returned slice must not be modified.
func (m *JSONMetadata) FileColumnIndexes() []int {
	return m.fileColumnIndexes
}

func buildJSONColumnMetadata(col *schema.Column, registry jsonschema.Registry) *JSONColumnMetadata {
	for _, opt := range col.Options {
		md, err := ExtractJSONMetadata(opt, registry)
		if err != nil {
			log.Printf("⚠️ Failed to get JSON schema for column %s: %v", col.Name, err)
			continue
		}
		if md != nil {
			return md
		}
	}
	return nil
}

// ExtractJSONMetadata extracts a JSON validation descriptor from a CHECK option. Options that
// are not CHECK constraints, or checks without a JSON schema call, yield nil without error.
func ExtractJSONMetadata(opt schema.ColumnOption, registry jsonschema.Registry) (*JSONColumnMetadata, error) {
	check, ok := opt.(schema.Check)
	if !ok {
		return nil, nil
	}

	if m := schemaNameRegex.FindStringSubmatch(check.Expr); m != nil {
		name := m[schemaNameRegex.SubexpIndex("name")]
		if _, ok := registry.Get(name); !ok {
			return nil, &JSONSchemaError{
				Kind:    ErrSchemaNotFound,
				Message: fmt.Sprintf("Json schema %s not found in: %v", name, registry.Names()),
			}
		}
		return &JSONColumnMetadata{Kind: JSONSchemaName, SchemaName: name}, nil
	}

	if m := schemaMatchesRegex.FindStringSubmatch(check.Expr); m != nil {
		pattern := m[schemaMatchesRegex.SubexpIndex("pattern")]
		var value any
		if err := json.Unmarshal([]byte(pattern), &value); err != nil {
			return nil, &JSONSchemaError{Kind: ErrJSONSerialization, Message: err.Error(), Err: err}
		}
		return &JSONColumnMetadata{Kind: JSONPattern, Pattern: value}, nil
	}

	return nil, nil
}

func findFileColumnIndexes(columns []*JSONColumnMetadata) []int {
	var indexes []int
	for i, md := range columns {
		if md != nil && md.Kind == JSONSchemaName && constants.IsFileUploadSchema(md.SchemaName) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
