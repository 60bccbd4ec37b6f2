package persistence

import (
	"context"
	"database/sql"

	"github.com/recordbase/backend/pkg/query"
)

// RecordRepository executes built list queries
type RecordRepository struct {
	db Executor
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// List runs a SELECT and scans every row. Values of blobColumns are base64 encoded.
func (r *RecordRepository) List(ctx context.Context, q query.QueryResult, blobColumns map[string]bool) ([]query.Record, error) {
	rows, err := r.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return query.ScanRows(rows, blobColumns)
}

// Count runs a COUNT(*) query
func (r *RecordRepository) Count(ctx context.Context, q query.QueryResult) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, q.SQL, q.Params...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
