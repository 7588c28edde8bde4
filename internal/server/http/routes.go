package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *common.Config, handler *Handler, logger *slog.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		catalog := v1.Group("/catalog")
		{
			catalog.POST("/import", handler.ImportCatalog)
		}

		selections := v1.Group("/selections")
		{
			selections.POST("/extract", handler.ExtractSelection)
			selections.POST("/export", handler.ExportSelection)
		}

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.POST("", handler.CreateProduct)
			products.GET("/:code", handler.GetProduct)
		}
	}

	return router
}
