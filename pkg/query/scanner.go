package query

import (
	"database/sql"

	"github.com/recordbase/backend/pkg/utils"
)

// Record is a single row keyed by column name
type Record map[string]interface{}

// ScanRows scans SQL rows into records. Values of blobColumns are url-safe base64 encoded,
// other byte values become strings.
func ScanRows(rows *sql.Rows, blobColumns map[string]bool) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]Record, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(Record, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				if blobColumns[col] {
					record[col] = utils.IDToBase64(b)
				} else {
					record[col] = string(b)
				}
			} else {
				record[col] = val
			}
		}

		results = append(results, record)
	}

	return results, rows.Err()
}
