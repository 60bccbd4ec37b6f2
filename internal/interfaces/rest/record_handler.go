package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recordbase/backend/internal/application/services"
	"github.com/recordbase/backend/internal/interfaces/middleware"
	"github.com/recordbase/backend/pkg/auth"
	"github.com/recordbase/backend/pkg/errors"
)

// RecordServiceInterface is the part of services.RecordService the handler needs
type RecordServiceInterface interface {
	List(ctx context.Context, apiName, rawQuery string, user *auth.User) (*services.ListResponse, error)
	ValidateRecord(apiName string, record map[string]any) error
}

// RecordHandler serves the record list API
type RecordHandler struct {
	svc RecordServiceInterface
	ErrorResponder
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(svc RecordServiceInterface, responder ErrorResponder) *RecordHandler {
	return &RecordHandler{svc: svc, ErrorResponder: responder}
}

// ListRecords handles GET /api/records/v1/:name
func (h *RecordHandler) ListRecords(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Param("name"), c.Request.URL.RawQuery, middleware.UserFromContext(c))
	if err != nil {
		h.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ValidateRecord handles POST /api/records/v1/:name/validate
func (h *RecordHandler) ValidateRecord(c *gin.Context) {
	var record map[string]any
	if err := c.ShouldBindJSON(&record); err != nil {
		h.RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return
	}
	if err := h.svc.ValidateRecord(c.Param("name"), record); err != nil {
		h.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
