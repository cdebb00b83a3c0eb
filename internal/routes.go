package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "thoughtburn/api/v1"
	"thoughtburn/internal/analytics"
	"thoughtburn/internal/config"
	"thoughtburn/internal/http"
	"thoughtburn/internal/preferences"
)

// RouteDeps are the services the routes are mounted on.
type RouteDeps struct {
	Store          *analytics.Store
	Preferences    *preferences.Service
	StorageBackend string
	// StorageState reports the storage circuit breaker, if the backend has one.
	StorageState func() string
}

// MountAppRoutes returns the route mount function for the given services.
func MountAppRoutes(deps RouteDeps) func(*cartridge.Server) {
	return func(srv *cartridge.Server) {
		mountRoutes(srv, deps)
	}
}

func mountRoutes(srv *cartridge.Server, deps RouteDeps) {
	cfg := config.GetConfig()
	handlers := v1.NewHandlers(deps.Store, deps.Preferences)

	// Helper to conditionally apply rate limiting (only in production)
	// In development/test, rate limiting would interfere with testing
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// 60/min covers fast repeated burns from one person
	writeRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(60),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	writeConfig := &cartridge.RouteConfig{
		WriteConcurrency: true,
		CustomMiddleware: []fiber.Handler{v1.RequireBrowserWrite(), writeRateLimiter},
	}

	// Operational endpoints are polled by probes and scrapers without browser headers
	opsConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
	}

	// === OPERATIONAL ROUTES ===
	healthAction := http.NewHealthIndexAction(deps.StorageBackend, deps.StorageState)
	srv.Get("/_health", healthAction, opsConfig)
	srv.Head("/_health", healthAction, opsConfig)
	srv.Get("/metrics", http.MetricsAction, opsConfig)

	// === ANALYTICS API ===
	srv.Post("/api/v1/thoughts/burn", handlers.BurnThoughtHandler, writeConfig)
	srv.Get("/api/v1/analytics", handlers.SnapshotHandler)
	srv.Get("/api/v1/analytics/today", handlers.TodayHandler)
	srv.Get("/api/v1/analytics/progress", handlers.ProgressHandler)
	srv.Get("/api/v1/dashboard", handlers.DashboardHandler)

	// === PREFERENCES API ===
	srv.Get("/api/v1/preferences", handlers.GetPreferencesHandler)
	srv.Post("/api/v1/preferences", handlers.UpdatePreferencesHandler, writeConfig)
}
