package schema

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ParseValue converts a raw string, as received in a query string, into a value suitable for
// binding against a column of the given type.
func ParseValue(dataType ColumnDataType, raw string) (any, error) {
	switch dataType {
	case DataTypeInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %q: %w", raw, err)
		}
		return v, nil
	case DataTypeReal:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expected real, got %q: %w", raw, err)
		}
		return v, nil
	case DataTypeText:
		return raw, nil
	case DataTypeBlob:
		return parseBlob(raw)
	default:
		// Numeric and untyped columns take whatever parses first.
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v, nil
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, nil
		}
		return raw, nil
	}
}

func parseBlob(raw string) ([]byte, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return id[:], nil
	}
	if b, err := base64.URLEncoding.DecodeString(raw); err == nil {
		return b, nil
	}
	if b, err := base64.RawURLEncoding.DecodeString(raw); err == nil {
		return b, nil
	}
	return nil, fmt.Errorf("expected url-safe base64 or uuid blob, got %q", raw)
}
