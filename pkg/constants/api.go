package constants

// HTTP and API constants
const (
	// HTTP Headers
	HeaderAuthorization = "Authorization"

	// Auth
	BearerPrefix   = "Bearer "
	ContextKeyUser = "user"
)

// Reserved list query parameters. Every other key is a column filter.
const (
	ParamLimit  = "limit"
	ParamCursor = "cursor"
	ParamOffset = "offset"
	ParamCount  = "count"
	ParamExpand = "expand"
	ParamOrder  = "order"

	// Pagination defaults
	DefaultLimit = 50
	MaxLimit     = 256
)

// Sort directions
const (
	SortASC  = "ASC"
	SortDESC = "DESC"
)
