// Package app provides the public API for embedding thoughtburn.
// It re-exports the types and constructors other programs need to run the
// server or drive the analytics store directly.
package app

import (
	"github.com/karloscodes/cartridge"

	"thoughtburn/internal"
	"thoughtburn/internal/analytics"
	"thoughtburn/internal/config"
	"thoughtburn/internal/database"
	"thoughtburn/internal/preferences"
)

// Re-export core types
type (
	Application = internal.Application
	Config      = config.Config
	DBManager   = database.DBManager
	RouteDeps   = internal.RouteDeps
)

// Re-export analytics types
type (
	Store          = analytics.Store
	Snapshot       = analytics.Snapshot
	WeeklyProgress = analytics.WeeklyProgress
	Dashboard      = analytics.Dashboard
	Preferences    = preferences.Preferences
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	return config.GetConfig()
}

// NewApp creates a new application with default routes
func NewApp() (*Application, error) {
	return internal.NewApp()
}

// NewAppWithConfig creates a new application from an explicit configuration
func NewAppWithConfig(cfg *Config) (*Application, error) {
	return internal.NewAppWithConfig(cfg)
}

// MountAppRoutes returns the route mount function for the given services
func MountAppRoutes(deps RouteDeps) func(*cartridge.Server) {
	return internal.MountAppRoutes(deps)
}
