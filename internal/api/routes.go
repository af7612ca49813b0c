package api

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/turntable/internal/api/handlers"
	"github.com/playmatatu/turntable/internal/config"
	"github.com/playmatatu/turntable/internal/middleware"
	"github.com/playmatatu/turntable/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, svc handlers.TableService, wsHandler *ws.Handler, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(svc))

		tables := v1.Group("/tables")
		{
			tables.POST("", handlers.CreateTable(svc))
			tables.POST("/:id/join", handlers.JoinTable(svc))
			tables.GET("/:id", handlers.GetTableState(svc))
			tables.GET("/:id/results", handlers.GetTableResults(svc))
			tables.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), wsHandler.ServeTable)
		}
	}
}
