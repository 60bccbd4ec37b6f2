package services

import (
	"encoding/json"
	"fmt"
	"sort"

	apperrors "github.com/recordbase/backend/pkg/errors"
)

// ValidateRecord checks a record body against the API's columns: every key must name a column
// and JSON columns must satisfy their schema. JSON values may be given inline or as an
// encoded string.
func (s *RecordService) ValidateRecord(apiName string, record map[string]any) error {
	_, md, err := s.Resolve(apiName)
	if err != nil {
		return err
	}
	columns := md.Columns()
	if columns == nil {
		return apperrors.NewApiRequiresTable()
	}

	var unknown []string
	for key := range record {
		if _, ok := md.ColumnIndexByName(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperrors.NewBadRequest(fmt.Sprintf("unknown column: %s", unknown[0]))
	}

	jsonMetadata := md.JSONMetadata()
	for i, col := range columns {
		value, present := record[col.Name]
		if !present || value == nil || jsonMetadata.Columns[i] == nil {
			continue
		}

		if encoded, ok := value.(string); ok {
			if err := json.Unmarshal([]byte(encoded), &value); err != nil {
				return apperrors.NewBadRequest(fmt.Sprintf("invalid json in %s", col.Name))
			}
		}
		if err := jsonMetadata.Columns[i].Validate(s.schemas.Registry(), value); err != nil {
			return apperrors.NewBadRequest(fmt.Sprintf("%s: %v", col.Name, err))
		}
	}
	return nil
}
