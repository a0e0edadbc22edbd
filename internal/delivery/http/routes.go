package http

import (
	"github.com/gin-gonic/gin"

	"github.com/competitive-edge/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes; all owner-scoped
	v1 := router.Group("/api/v1")
	v1.Use(OwnerMiddleware())
	{
		products := v1.Group("/products")
		{
			products.POST("", handler.CreateProduct)
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
			products.PUT("/:id", handler.UpdateProduct)
			products.DELETE("/:id", handler.DeleteProduct)
			products.POST("/:id/discover", handler.DiscoverCompetitors)
			products.GET("/:id/candidates", handler.ListCandidates)
		}

		matches := v1.Group("/matches")
		{
			matches.POST("/approve", handler.ApproveCandidate)
		}

		competitors := v1.Group("/competitors")
		{
			competitors.POST("/link", handler.LinkCompetitor)
			competitors.GET("", handler.ListCompetitors)
			competitors.DELETE("/:id", handler.DeleteCompetitor)
			competitors.POST("/:id/recrawl", handler.RecrawlCompetitor)
			competitors.GET("/:id/compare", handler.CompareCompetitor)
			competitors.GET("/:id/history", handler.ListPriceHistory)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/summary", handler.DashboardSummary)
		}
	}

	return router
}
