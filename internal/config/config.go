// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for world, broad-phase and server
// settings; other packages receive these values, they never read the
// environment themselves.
package config

import (
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// WORLD CONFIGURATION
// =============================================================================

// WorldConfig holds simulation world settings.
type WorldConfig struct {
	Width    float64 // world width in units
	Height   float64 // world height in units
	TickRate int     // collision ticks per second
	Bodies   int     // demo bodies spawned at startup
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Width:    1280,
		Height:   720,
		TickRate: 30,
		Bodies:   60,
	}
}

// WorldFromEnv returns world configuration with environment overrides.
func WorldFromEnv() WorldConfig {
	cfg := DefaultWorld()

	if w := getEnvFloat("WORLD_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvFloat("WORLD_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if n := getEnvInt("DEMO_BODIES", 0); n > 0 {
		cfg.Bodies = n
	}

	return cfg
}

// =============================================================================
// BROAD-PHASE CONFIGURATION
// =============================================================================

// Broad-phase strategy names accepted by BroadphaseConfig.Strategy.
const (
	StrategyBrute    = "brute"
	StrategyHash     = "hash"
	StrategyQuadtree = "quadtree"
	StrategySweep    = "sweep"
)

// BroadphaseConfig selects and tunes the broad-phase strategy.
type BroadphaseConfig struct {
	Strategy string // one of brute, hash, quadtree, sweep

	// Spatial hash. Cell size should be roughly twice the largest expected
	// shape extent.
	CellSize float64

	// Quadtree. World bounds come from WorldConfig.
	QuadtreeMaxItems int     // leaf capacity before a split
	QuadtreeMinSize  float64 // smallest leaf edge; splitting stops below this

	Capacity int // expected shape count, used for preallocation
}

// DefaultBroadphase returns the default broad-phase configuration.
func DefaultBroadphase() BroadphaseConfig {
	return BroadphaseConfig{
		Strategy:         StrategyHash,
		CellSize:         100,
		QuadtreeMaxItems: 8,
		QuadtreeMinSize:  10,
		Capacity:         256,
	}
}

// BroadphaseFromEnv returns broad-phase configuration with environment
// overrides. An unrecognized BROADPHASE value falls back to the default
// rather than failing startup.
func BroadphaseFromEnv() BroadphaseConfig {
	cfg := DefaultBroadphase()

	switch s := strings.ToLower(os.Getenv("BROADPHASE")); s {
	case StrategyBrute, StrategyHash, StrategyQuadtree, StrategySweep:
		cfg.Strategy = s
	}
	if cs := getEnvFloat("BROADPHASE_CELL_SIZE", 0); cs > 0 {
		cfg.CellSize = cs
	}
	if mi := getEnvInt("QUADTREE_MAX_ITEMS", 0); mi > 0 {
		cfg.QuadtreeMaxItems = mi
	}
	if ms := getEnvFloat("QUADTREE_MIN_SIZE", 0); ms > 0 {
		cfg.QuadtreeMinSize = ms
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int
	RequestsPerSecond float64 // per-IP rate limit
	Burst             int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:              3000,
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if rps := getEnvFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		cfg.RequestsPerSecond = rps
	}
	if b := getEnvInt("RATE_LIMIT_BURST", 0); b > 0 {
		cfg.Burst = b
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	World      WorldConfig
	Broadphase BroadphaseConfig
	Server     ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		World:      WorldFromEnv(),
		Broadphase: BroadphaseFromEnv(),
		Server:     ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
