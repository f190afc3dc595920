// Package api exposes the simulation over HTTP: a chi router with JSON
// state endpoints, a websocket snapshot stream, prometheus observability,
// and a PNG scene view for broad-phase tuning.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"collide2d/internal/sim"
)

// EngineInterface is the slice of the sim engine the API layer needs.
// Keeping it minimal lets tests plug in a stub without a running tick loop.
type EngineInterface interface {
	// Snapshot returns the latest immutable tick snapshot, nil before the
	// first tick.
	Snapshot() *sim.Snapshot
}

// RouterConfig carries the router's dependencies, injected for testability.
type RouterConfig struct {
	// Engine is the simulation (required).
	Engine EngineInterface

	// Hub is an optional websocket hub; when nil the /ws route is omitted.
	Hub *Hub

	// RateLimiter is an optional pre-configured limiter; when nil one is
	// built from RateLimitConfig (or defaults).
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the allowed origins; nil means localhost only.
	CORSOrigins []string

	// DisableLogging drops the request logger middleware (benchmarks).
	DisableLogging bool
}

type routerHandlers struct {
	engine EngineInterface
}

// NewRouter constructs the HTTP router. It is pure: no goroutines, no
// listeners, safe for httptest servers.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rlCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &routerHandlers{engine: cfg.Engine}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
	})

	r.Get("/debug/scene.png", h.handleScenePNG)

	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.HandleWebSocket)
	}

	return r
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	if snap == nil {
		writeError(w, "no snapshot yet", http.StatusServiceUnavailable)
		RecordRequest(r.Method, "/api/state", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
	RecordRequest(r.Method, "/api/state", http.StatusOK)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	if snap == nil {
		writeError(w, "no snapshot yet", http.StatusServiceUnavailable)
		RecordRequest(r.Method, "/api/stats", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{
		"tick":       snap.Tick,
		"shapes":     len(snap.Shapes),
		"contacts":   len(snap.Contacts),
		"candidates": snap.Stats.Candidates,
		"elapsedUs":  snap.Stats.Elapsed.Microseconds(),
		"enters":     snap.Enters,
		"exits":      snap.Exits,
	})
	RecordRequest(r.Method, "/api/stats", http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
