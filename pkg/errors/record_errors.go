package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sql-driver/mysql"
)

// RecordErrorKind classifies failures of the record APIs
type RecordErrorKind int

const (
	KindApiNotFound RecordErrorKind = iota
	KindApiRequiresTable
	KindRecordNotFound
	KindForbidden
	KindBadRequest
	KindInternal
)

// MySQL error numbers mapped to client errors
const (
	mysqlErrCheckViolated   = 3819
	mysqlErrRowIsReferenced = 1451
	mysqlErrNoReferencedRow = 1452
	mysqlErrBadNull         = 1048
	mysqlErrDupEntry        = 1062
	mysqlErrTruncatedValue  = 1366
	mysqlErrOutOfRange      = 1264
)

// RecordError is returned by the record list and schema endpoints
type RecordError struct {
	Kind   RecordErrorKind
	Reason string
	Cause  error
}

func (e *RecordError) Error() string {
	switch e.Kind {
	case KindApiNotFound:
		return "API not found"
	case KindApiRequiresTable:
		return "API requires table"
	case KindRecordNotFound:
		return "Not found"
	case KindForbidden:
		return "Forbidden"
	case KindBadRequest:
		return fmt.Sprintf("Bad request: %s", e.Reason)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("Internal: %v", e.Cause)
		}
		return "Internal"
	}
}

// PublicMessage is the message without internal causes
func (e *RecordError) PublicMessage() string {
	if e.Kind == KindInternal {
		return "Internal"
	}
	return e.Error()
}

func (e *RecordError) Unwrap() error {
	return e.Cause
}

func (e *RecordError) HTTPStatus() int {
	switch e.Kind {
	case KindApiNotFound, KindApiRequiresTable:
		return http.StatusMethodNotAllowed
	case KindRecordNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (e *RecordError) Code() string {
	switch e.Kind {
	case KindApiNotFound:
		return "API_NOT_FOUND"
	case KindApiRequiresTable:
		return "API_REQUIRES_TABLE"
	case KindRecordNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}

func NewApiNotFound() *RecordError       { return &RecordError{Kind: KindApiNotFound} }
func NewApiRequiresTable() *RecordError  { return &RecordError{Kind: KindApiRequiresTable} }
func NewRecordNotFound() *RecordError    { return &RecordError{Kind: KindRecordNotFound} }
func NewForbidden() *RecordError         { return &RecordError{Kind: KindForbidden} }
func NewBadRequest(reason string) *RecordError {
	return &RecordError{Kind: KindBadRequest, Reason: reason}
}

// NewRecordInternal wraps an unexpected failure
func NewRecordInternal(cause error) *RecordError {
	return &RecordError{Kind: KindInternal, Cause: cause}
}

// FromStorageError maps a database error to a RecordError. Constraint violations are the
// client's fault, anything else is internal.
func FromStorageError(err error) *RecordError {
	if errors.Is(err, sql.ErrNoRows) {
		return NewRecordNotFound()
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrCheckViolated:
			return NewBadRequest("constraint: check")
		case mysqlErrRowIsReferenced, mysqlErrNoReferencedRow:
			return NewBadRequest("constraint: foreign key")
		case mysqlErrBadNull:
			return NewBadRequest("constraint: not null")
		case mysqlErrDupEntry:
			return NewBadRequest("constraint: unique")
		case mysqlErrTruncatedValue, mysqlErrOutOfRange:
			return NewBadRequest("constraint: data type")
		}
	}

	return NewRecordInternal(err)
}
