package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/playmatatu/turntable/internal/config"
)

var devOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://127.0.0.1:5173",
}

// AllowedOrigins lists the browser origins that may call the API.
func AllowedOrigins(cfg *config.Config) []string {
	if cfg.Environment == "development" {
		return devOrigins
	}
	var origins []string
	if cfg.FrontendURL != "" {
		origins = append(origins, strings.TrimRight(cfg.FrontendURL, "/"))
	}
	return origins
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, FrontendURL: %s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	origins := AllowedOrigins(cfg)
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
		log.Printf("[CORS] No FRONTEND_URL set, allowing all origins")
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		log.Printf("[CORS] Allowed origins: %v", origins)
	}

	return cors.New(corsConfig)
}

// OriginChecker returns a websocket CheckOrigin func. Requests without an
// Origin header (terminal or native clients) are let through.
func OriginChecker(cfg *config.Config) func(r *http.Request) bool {
	origins := AllowedOrigins(cfg)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(origins) == 0 {
			return true
		}
		if cfg.Environment == "development" {
			return strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		}
		for _, allowed := range origins {
			if origin == allowed {
				return true
			}
		}
		return false
	}
}

// WebSocketCORSCheck rejects websocket upgrades from unknown origins before
// the upgrader runs, so the client sees a JSON error instead of a bare 403.
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	check := OriginChecker(cfg)
	return func(c *gin.Context) {
		if strings.ToLower(c.GetHeader("Connection")) != "upgrade" ||
			strings.ToLower(c.GetHeader("Upgrade")) != "websocket" {
			c.Next()
			return
		}

		if !check(c.Request) {
			c.JSON(http.StatusForbidden, gin.H{"error": "WebSocket origin not allowed"})
			c.Abort()
			return
		}

		c.Next()
	}
}
