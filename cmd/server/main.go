package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playmatatu/turntable/internal/api"
	"github.com/playmatatu/turntable/internal/config"
	"github.com/playmatatu/turntable/internal/database"
	"github.com/playmatatu/turntable/internal/game"
	"github.com/playmatatu/turntable/internal/middleware"
	"github.com/playmatatu/turntable/internal/migrations"
	"github.com/playmatatu/turntable/internal/natsbus"
	"github.com/playmatatu/turntable/internal/pool"
	"github.com/playmatatu/turntable/internal/redis"
	"github.com/playmatatu/turntable/internal/ws"
)

// motionFrameEvery sends every second rolling frame to websocket clients.
const motionFrameEvery = 2

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if db != nil {
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	}

	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	nc, err := natsbus.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	if nc != nil {
		defer nc.Drain()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	manager := game.NewManager(db, rdb, cfg)
	manager.AddBridgeFactory(func(tableID string) pool.Bridge {
		return ws.NewTableBridge(hub, tableID, motionFrameEvery)
	})
	if nc != nil {
		manager.AddBridgeFactory(func(tableID string) pool.Bridge {
			return natsbus.NewTableBridge(nc, tableID)
		})
	}
	manager.StartReaper(ctx, time.Minute)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, manager, ws.NewHandler(hub, manager, middleware.OriginChecker(cfg)), cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Printf("[SERVER] Starting turntable server on port %s (tick=%s, policy=%s)",
			cfg.Port, cfg.TickInterval(), cfg.PocketPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[SERVER] Shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[SERVER] HTTP shutdown: %v", err)
	}
	manager.Shutdown(shutdownCtx)
	cancel()
	log.Println("[SERVER] Stopped")
}
