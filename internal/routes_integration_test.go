package internal

import (
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"

	"thoughtburn/internal/analytics"
	"thoughtburn/internal/preferences"
	"thoughtburn/internal/storage"
	apptestsupport "thoughtburn/internal/testsupport"
)

func testRouteDeps(t *testing.T) RouteDeps {
	t.Helper()
	apptestsupport.TestConfig(t)
	provider := storage.NewMemoryProvider()
	return RouteDeps{
		Store:          analytics.NewStore(provider, nil, nil),
		Preferences:    preferences.NewService(t.Context(), provider, nil),
		StorageBackend: "memory",
	}
}

func findRoute(routes []fiber.Route, method, path string) *fiber.Route {
	for idx := range routes {
		if routes[idx].Method == method && routes[idx].Path == path {
			return &routes[idx]
		}
	}
	return nil
}

func TestBurnRouteRateLimited(t *testing.T) {
	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		RouteMountFunc: MountAppRoutes(testRouteDeps(t)),
	})
	routes := srv.App.GetRoutes(true)

	burnRoute := findRoute(routes, fiber.MethodPost, "/api/v1/thoughts/burn")
	require.NotNil(t, burnRoute, "expected burn route to be registered")

	// The rate limiter is wrapped in a conditional function that only applies
	// in production. In test environment, it passes through but the wrapper
	// still exists.
	hasRateLimiter := false
	var handlerNames []string
	for _, handler := range burnRoute.Handlers {
		name := runtime.FuncForPC(reflect.ValueOf(handler).Pointer()).Name()
		handlerNames = append(handlerNames, name)
		if strings.Contains(name, "middleware/limiter") || strings.Contains(name, "mountRoutes.func") {
			hasRateLimiter = true
			break
		}
	}

	require.Truef(t, hasRateLimiter, "expected rate limiter middleware for burn route, handlers: %v", handlerNames)
}

func TestAPIRoutesRegistered(t *testing.T) {
	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		RouteMountFunc: MountAppRoutes(testRouteDeps(t)),
	})
	routes := srv.App.GetRoutes(true)

	expected := []struct{ method, path string }{
		{fiber.MethodGet, "/_health"},
		{fiber.MethodHead, "/_health"},
		{fiber.MethodGet, "/metrics"},
		{fiber.MethodPost, "/api/v1/thoughts/burn"},
		{fiber.MethodGet, "/api/v1/analytics"},
		{fiber.MethodGet, "/api/v1/analytics/today"},
		{fiber.MethodGet, "/api/v1/analytics/progress"},
		{fiber.MethodGet, "/api/v1/dashboard"},
		{fiber.MethodGet, "/api/v1/preferences"},
		{fiber.MethodPost, "/api/v1/preferences"},
	}

	for _, route := range expected {
		require.NotNilf(t, findRoute(routes, route.method, route.path), "expected %s %s to be registered", route.method, route.path)
	}
}
