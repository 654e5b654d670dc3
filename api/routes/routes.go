package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/ema-randomizer/internal/config"
	"github.com/ArowuTest/ema-randomizer/internal/handlers"
	"github.com/ArowuTest/ema-randomizer/internal/middleware"
)

// HandlerDependencies holds the handlers mounted by the router
type HandlerDependencies struct {
	RunHandler *handlers.RunHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.RunAuthMiddleware(cfg))
	{
		runs := protected.Group("/runs")
		{
			runs.POST("", deps.RunHandler.TriggerRun)
			runs.GET("", deps.RunHandler.GetRecentRuns)
		}
	}

	return router
}
