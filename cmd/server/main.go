package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"collide2d/internal/api"
	"collide2d/internal/collide"
	"collide2d/internal/config"
	"collide2d/internal/sim"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	cfg := config.Load()

	log.Printf("world: %.0fx%.0f, %d TPS, %d demo bodies",
		cfg.World.Width, cfg.World.Height, cfg.World.TickRate, cfg.World.Bodies)
	log.Printf("broad phase: %s (cell=%.1f, qt max=%d, qt min=%.1f)",
		cfg.Broadphase.Strategy, cfg.Broadphase.CellSize,
		cfg.Broadphase.QuadtreeMaxItems, cfg.Broadphase.QuadtreeMinSize)

	engine := sim.NewEngine(cfg)
	engine.SpawnScene(cfg.World.Bodies)

	hub := api.NewHub()
	go hub.Run()

	engine.SetTickFunc(func(snap *sim.Snapshot, stats collide.StepStats) {
		api.RecordStep(stats)
		if hub.ClientCount() > 0 {
			hub.Broadcast("world:snapshot", snap)
		}
	})

	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Engine: engine,
		Hub:    hub,
		RateLimitConfig: &api.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			Burst:             cfg.Server.Burst,
		},
	})

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	engine.Start()
	log.Printf("listening on %s", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	engine.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
