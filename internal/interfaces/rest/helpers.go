package rest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recordbase/backend/pkg/errors"
)

// ErrorResponder writes standardised JSON error responses. Internal error details are only
// included in debug mode.
type ErrorResponder struct {
	Debug bool
}

// RespondAppError sends a standardised JSON error response using pkg/errors
func (r ErrorResponder) RespondAppError(c *gin.Context, err error) {
	code, body := errors.Response(err, r.Debug)

	if code >= http.StatusInternalServerError {
		log.Printf("❌ ERROR [%d] %s %s: %s", code, c.Request.Method, c.Request.URL.Path, err.Error())
	}

	c.JSON(code, body)
}
