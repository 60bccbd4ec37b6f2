package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recordbase/backend/internal/interfaces/middleware"
	"github.com/recordbase/backend/pkg/auth"
)

// RegisterRoutes mounts the record and schema APIs on router
func RegisterRoutes(router *gin.Engine, tokens *auth.TokenManager, records *RecordHandler, schemas *SchemaHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	api := router.Group("/api")
	api.Use(middleware.Authenticate(tokens))
	{
		api.GET("/records/v1/:name", records.ListRecords)
		api.POST("/records/v1/:name/validate", records.ValidateRecord)
		api.GET("/schema/v1/:name", schemas.GetSchema)
	}
}
