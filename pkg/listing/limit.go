package listing

import (
	"fmt"

	"github.com/recordbase/backend/pkg/constants"
)

// LimitOrDefault returns the page size for a list request: DefaultLimit when unset, an error
// when above MaxLimit.
func LimitOrDefault(limit *int) (int, error) {
	if limit == nil {
		return constants.DefaultLimit, nil
	}
	if *limit > constants.MaxLimit {
		return 0, fmt.Errorf("limit %d exceeds max limit of %d", *limit, constants.MaxLimit)
	}
	return *limit, nil
}
