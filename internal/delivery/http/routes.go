package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nutridex/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(IdentityMiddleware())

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("/search", handler.SearchProducts)
			products.GET("/:code", handler.ResolveBarcode)
		}

		community := v1.Group("/community/products")
		{
			community.POST("", handler.SubmitProduct)
			community.GET("", handler.ListCommunityProducts)
			community.GET("/:code", handler.GetCommunityProduct)
			community.POST("/:code/moderation", handler.ModerateProduct)
		}

		diary := v1.Group("/diary")
		{
			diary.POST("/summary", handler.SummarizeDiary)
		}
	}

	return router
}
