package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/recordbase/backend/pkg/auth"
	"github.com/recordbase/backend/pkg/constants"
	"github.com/recordbase/backend/pkg/errors"
)

// Authenticate validates an optional bearer token. Requests without an Authorization header
// continue anonymously; a malformed or invalid token is rejected.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		token, ok := strings.CutPrefix(authHeader, constants.BearerPrefix)
		if !ok || token == "" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(constants.ContextKeyUser, claims.User)
		c.Next()
	}
}

// UserFromContext returns the authenticated user, or nil for anonymous requests
func UserFromContext(c *gin.Context) *auth.User {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := v.(auth.User)
	if !ok {
		return nil
	}
	return &user
}

func abortUnauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(errors.Response(errors.NewUnauthorizedError(reason), false))
}
