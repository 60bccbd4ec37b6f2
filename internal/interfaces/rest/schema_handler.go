package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/recordbase/backend/internal/config"
	"github.com/recordbase/backend/pkg/metadata"
	"github.com/recordbase/backend/pkg/schema"
)

// SchemaResolver resolves a record API to its fact sheet
type SchemaResolver interface {
	Resolve(apiName string) (config.RecordAPI, metadata.TableOrViewMetadata, error)
}

// SchemaHandler serves the fact sheets behind record APIs
type SchemaHandler struct {
	resolver SchemaResolver
	ErrorResponder
}

// NewSchemaHandler creates a new SchemaHandler
func NewSchemaHandler(resolver SchemaResolver, responder ErrorResponder) *SchemaHandler {
	return &SchemaHandler{resolver: resolver, ErrorResponder: responder}
}

// ColumnResponse describes a single column
type ColumnResponse struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Options    []string `json:"options,omitempty"`
	JSONSchema string   `json:"json_schema,omitempty"`
}

// SchemaResponse is the public fact sheet of a record API
type SchemaResponse struct {
	API            string           `json:"api"`
	Name           string           `json:"name"`
	Columns        []ColumnResponse `json:"columns"`
	RecordPKColumn *string          `json:"record_pk_column"`
	UserIDColumns  []string         `json:"user_id_columns"`
	FileColumns    []string         `json:"file_columns"`
}

// GetSchema handles GET /api/schema/v1/:name
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	api, md, err := h.resolver.Resolve(c.Param("name"))
	if err != nil {
		h.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildSchemaResponse(api, md))
}

func buildSchemaResponse(api config.RecordAPI, md metadata.TableOrViewMetadata) SchemaResponse {
	columns := md.Columns()
	resp := SchemaResponse{
		API:           api.Name,
		Name:          md.Name(),
		Columns:       make([]ColumnResponse, 0, len(columns)),
		UserIDColumns: []string{},
		FileColumns:   []string{},
	}

	jsonMetadata := md.JSONMetadata()
	for i, col := range columns {
		cr := ColumnResponse{Name: col.Name, Type: col.DataType.String()}
		for _, opt := range col.Options {
			cr.Options = append(cr.Options, describeOption(opt))
		}
		if jsonMetadata != nil && jsonMetadata.Columns[i] != nil {
			if jm := jsonMetadata.Columns[i]; jm.Kind == metadata.JSONSchemaName {
				cr.JSONSchema = jm.SchemaName
			} else {
				cr.JSONSchema = "pattern"
			}
		}
		resp.Columns = append(resp.Columns, cr)
	}

	if _, pk, ok := md.RecordPKColumn(); ok {
		resp.RecordPKColumn = &pk.Name
	}
	for _, i := range md.UserIDColumns() {
		resp.UserIDColumns = append(resp.UserIDColumns, columns[i].Name)
	}
	if jsonMetadata != nil {
		for _, i := range jsonMetadata.FileColumnIndexes() {
			resp.FileColumns = append(resp.FileColumns, columns[i].Name)
		}
	}
	return resp
}

func describeOption(opt schema.ColumnOption) string {
	switch o := opt.(type) {
	case schema.Unique:
		if o.IsPrimary {
			return "PRIMARY KEY"
		}
		return "UNIQUE"
	case schema.NotNull:
		return "NOT NULL"
	case schema.Default:
		return "DEFAULT " + o.Expr
	case schema.Check:
		return "CHECK (" + o.Expr + ")"
	case schema.ForeignKey:
		return fmt.Sprintf("REFERENCES %s(%s)", o.ForeignTable, strings.Join(o.ReferredColumns, ", "))
	default:
		return ""
	}
}
