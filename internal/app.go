// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"thoughtburn/internal/analytics"
	"thoughtburn/internal/calendar"
	"thoughtburn/internal/config"
	"thoughtburn/internal/database"
	"thoughtburn/internal/jobs"
	"thoughtburn/internal/preferences"
	"thoughtburn/internal/storage"
)

// Application wraps cartridge.Application with the thoughtburn services
type Application struct {
	*cartridge.Application
	Config      *config.Config
	DBManager   *database.DBManager // DB manager with migration methods
	Backend     *storage.Backend
	Store       *analytics.Store
	Preferences *preferences.Service
	Scheduler   *jobs.Scheduler
	Logger      *slog.Logger
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	// Create logger
	logger := cartridge.NewLogger(cfg, nil)

	// Initialize database manager
	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// The settings table must exist before preferences are read from it
	if err := dbManager.MigrateDatabase(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	backend, err := storage.Open(cfg, dbManager.GetConnection(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	var storeOpts []analytics.Option
	if cfg.SerializeWrites {
		storeOpts = append(storeOpts, analytics.WithSerializedWrites())
	}
	deriver := calendar.NewDeriver(cfg.GetLocation(), nil)
	store := analytics.NewStore(backend.Provider, deriver, logger, storeOpts...)
	prefs := preferences.NewService(context.Background(), backend.Provider, logger)

	// Initialize jobs system
	scheduler := jobs.NewScheduler(cfg, store, logger)

	// Create the cartridge application using NewApplication
	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		RouteMountFunc: MountAppRoutes(RouteDeps{
			Store:          store,
			Preferences:    prefs,
			StorageBackend: backend.Name,
			StorageState:   backend.State,
		}),
		BackgroundWorkers: []cartridge.BackgroundWorker{scheduler},
	})
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	logger.Info("Application initialized",
		slog.String("storage_backend", backend.Name),
		slog.String("timezone", deriver.Location().String()),
		slog.Bool("serialize_writes", cfg.SerializeWrites),
		slog.Int("retention_days", cfg.RetentionDays))

	return &Application{
		Application: app,
		Config:      cfg,
		DBManager:   dbManager,
		Backend:     backend,
		Store:       store,
		Preferences: prefs,
		Scheduler:   scheduler,
		Logger:      logger,
	}, nil
}

// Shutdown stops the server and background workers, then releases storage.
func (a *Application) Shutdown(ctx context.Context) error {
	err := a.Application.Shutdown(ctx)
	if closeErr := a.Backend.Close(); closeErr != nil {
		a.Logger.Error("Failed to close storage backend", slog.Any("error", closeErr))
		if err == nil {
			err = closeErr
		}
	}
	return err
}
