package services

import (
	"context"
	"fmt"
	"log"

	"github.com/recordbase/backend/internal/config"
	"github.com/recordbase/backend/pkg/auth"
	apperrors "github.com/recordbase/backend/pkg/errors"
	"github.com/recordbase/backend/pkg/listing"
	"github.com/recordbase/backend/pkg/metadata"
	"github.com/recordbase/backend/pkg/query"
	"github.com/recordbase/backend/pkg/schema"
)

// Placeholder the caller's id is bound to in owner filters. Filter keys starting with '_'
// are rejected, so client filters never collide with it.
const userIDParam = "__user_id"

// RecordStore executes list queries
type RecordStore interface {
	List(ctx context.Context, q query.QueryResult, blobColumns map[string]bool) ([]query.Record, error)
	Count(ctx context.Context, q query.QueryResult) (int64, error)
}

// ListResponse is the result of a list request
type ListResponse struct {
	Records    []query.Record `json:"records"`
	Cursor     *string        `json:"cursor"`
	TotalCount *int64         `json:"total_count,omitempty"`
}

// RecordService lists records of the configured record APIs
type RecordService struct {
	schemas *SchemaService
	store   RecordStore
	apis    map[string]config.RecordAPI
}

// NewRecordService creates a new RecordService
func NewRecordService(schemas *SchemaService, store RecordStore, apis []config.RecordAPI) *RecordService {
	byName := make(map[string]config.RecordAPI, len(apis))
	for _, api := range apis {
		byName[api.Name] = api
	}
	return &RecordService{schemas: schemas, store: store, apis: byName}
}

// Resolve returns the fact sheet backing a record API
func (s *RecordService) Resolve(apiName string) (config.RecordAPI, metadata.TableOrViewMetadata, error) {
	api, ok := s.apis[apiName]
	if !ok {
		return config.RecordAPI{}, nil, apperrors.NewApiNotFound()
	}
	md, ok := s.schemas.Snapshot().Lookup(api.Table)
	if !ok {
		log.Printf("⚠️ Record API %s references unknown table %s", api.Name, api.Table)
		return api, nil, apperrors.NewApiNotFound()
	}
	return api, md, nil
}

// List parses rawQuery, compiles it against the API's table or view and returns one page of
// records.
func (s *RecordService) List(ctx context.Context, apiName, rawQuery string, user *auth.User) (*ListResponse, error) {
	api, md, err := s.Resolve(apiName)
	if err != nil {
		return nil, err
	}
	columns := md.Columns()
	if columns == nil {
		// Views without inferable columns cannot be filtered safely.
		return nil, apperrors.NewApiRequiresTable()
	}

	parsed, err := listing.ParseAndSanitizeQuery(rawQuery)
	if err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	where, err := listing.BuildFilterWhereClause(md.Name(), columns, parsed.Filters)
	if err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	limit, err := listing.LimitOrDefault(parsed.Limit)
	if err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	if err := validateExpand(md, parsed.Expand); err != nil {
		return nil, err
	}

	b := query.From(md.Name()).WhereNamed(where.Clause, where.Params)

	if api.OwnerOnly {
		if err := applyOwnerFilter(b, md, user); err != nil {
			return nil, err
		}
	}

	// The total covers every matching record, so it is built before the cursor narrows the page.
	var countQuery *query.QueryResult
	if parsed.Count != nil && *parsed.Count {
		cq, err := b.BuildCount()
		if err != nil {
			return nil, apperrors.NewRecordInternal(err)
		}
		countQuery = &cq
	}

	order, err := resolveOrder(md, parsed.Order)
	if err != nil {
		return nil, err
	}

	if parsed.Cursor != nil {
		if err := applyCursor(b, md, order, parsed.Cursor); err != nil {
			return nil, err
		}
	}

	for _, o := range order {
		b.OrderBy(o.Column, o.Order)
	}
	b.Limit(limit)
	if parsed.Offset != nil {
		b.Offset(*parsed.Offset)
	}

	q, err := b.Build()
	if err != nil {
		return nil, apperrors.NewRecordInternal(err)
	}

	records, err := s.store.List(ctx, q, blobColumns(columns))
	if err != nil {
		return nil, apperrors.FromStorageError(err)
	}

	response := &ListResponse{Records: records}
	if _, pk, ok := md.RecordPKColumn(); ok && len(records) > 0 {
		if v := records[len(records)-1][pk.Name]; v != nil {
			cursor := fmt.Sprint(v)
			response.Cursor = &cursor
		}
	}

	if countQuery != nil {
		total, err := s.store.Count(ctx, *countQuery)
		if err != nil {
			return nil, apperrors.FromStorageError(err)
		}
		response.TotalCount = &total
	}

	return response, nil
}

// resolveOrder checks the requested order against the columns. Without an explicit order,
// records are listed newest first by their record key.
func resolveOrder(md metadata.TableOrViewMetadata, order []listing.OrderBy) ([]listing.OrderBy, error) {
	for _, o := range order {
		if _, ok := md.ColumnIndexByName(o.Column); !ok {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid order column: %s", o.Column))
		}
	}
	if len(order) == 0 {
		if _, pk, ok := md.RecordPKColumn(); ok {
			return []listing.OrderBy{{Column: pk.Name, Order: listing.Descending}}, nil
		}
	}
	return order, nil
}

// applyCursor continues after the cursor in the direction the record key is ordered by.
func applyCursor(b *query.Builder, md metadata.TableOrViewMetadata, order []listing.OrderBy, cursor listing.Cursor) error {
	_, pk, ok := md.RecordPKColumn()
	if !ok {
		return apperrors.NewBadRequest("cursor not supported: no record key column")
	}

	switch cursor.(type) {
	case listing.BlobCursor:
		if pk.DataType != schema.DataTypeBlob {
			return apperrors.NewBadRequest("invalid cursor")
		}
	case listing.IntegerCursor:
		if pk.DataType != schema.DataTypeInteger {
			return apperrors.NewBadRequest("invalid cursor")
		}
	}

	op := ""
	for _, o := range order {
		if o.Column == pk.Name {
			op = ">"
			if o.Order == listing.Descending {
				op = "<"
			}
			break
		}
	}
	if op == "" {
		return apperrors.NewBadRequest(fmt.Sprintf("cursor requires ordering by %s", pk.Name))
	}

	b.WhereNamed(fmt.Sprintf(`%s.%s %s :cursor`, query.QuoteIdent(md.Name()), query.QuoteIdent(pk.Name), op), []listing.NamedParam{
		{Name: "cursor", Value: cursor.Value()},
	})
	return nil
}

// applyOwnerFilter restricts the listing to records owned by user.
func applyOwnerFilter(b *query.Builder, md metadata.TableOrViewMetadata, user *auth.User) error {
	if user == nil {
		return apperrors.NewForbidden()
	}

	userColumns := md.UserIDColumns()
	if len(userColumns) == 0 {
		return apperrors.NewRecordInternal(fmt.Errorf("%s has no user id column", md.Name()))
	}

	columns := md.Columns()
	for _, i := range userColumns {
		col := columns[i]
		id, err := schema.ParseValue(col.DataType, user.ID)
		if err != nil {
			log.Printf("⚠️ User id %q does not fit %s.%s: %v", user.ID, md.Name(), col.Name, err)
			return apperrors.NewForbidden()
		}
		b.WhereNamed(fmt.Sprintf(`%s.%s = :%s`, query.QuoteIdent(md.Name()), query.QuoteIdent(col.Name), userIDParam), []listing.NamedParam{
			{Name: userIDParam, Value: id},
		})
	}
	return nil
}

// validateExpand only accepts foreign key columns.
func validateExpand(md metadata.TableOrViewMetadata, expand []string) error {
	for _, name := range expand {
		_, col, ok := md.ColumnByName(name)
		if !ok || len(col.ForeignKeys()) == 0 {
			return apperrors.NewBadRequest(fmt.Sprintf("cannot expand %s", name))
		}
	}
	return nil
}

func blobColumns(columns []schema.Column) map[string]bool {
	blobs := make(map[string]bool)
	for _, col := range columns {
		if col.DataType == schema.DataTypeBlob {
			blobs[col.Name] = true
		}
	}
	return blobs
}
