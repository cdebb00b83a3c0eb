package http

import (
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	DBStatus       string    `json:"db_status"`
	StorageBackend string    `json:"storage_backend"`
	StorageState   string    `json:"storage_state,omitempty"`
}

// NewHealthIndexAction returns the health check handler. storageBackend is
// reported as-is so operators can tell which provider the store writes to.
// storageState, when set, reports the backend's circuit breaker; an open
// breaker marks the service degraded.
func NewHealthIndexAction(storageBackend string, storageState func() string) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		dbStatus := "ok"

		// Check database connectivity
		db := ctx.DBManager.GetConnection()
		if db == nil {
			dbStatus = "error"
			ctx.Logger.Error("Database connection unavailable")
		} else {
			sqlDB, err := db.DB()
			if err != nil {
				dbStatus = "error"
				ctx.Logger.Error("Database connection error", slog.Any("error", err))
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error"
				ctx.Logger.Error("Database ping failed", slog.Any("error", err))
			}
		}

		health := HealthStatus{
			Status:         "ok",
			Timestamp:      time.Now(),
			DBStatus:       dbStatus,
			StorageBackend: storageBackend,
		}

		if storageState != nil {
			health.StorageState = storageState()
		}

		if dbStatus != "ok" || health.StorageState == "open" {
			health.Status = "degraded"
		}

		return ctx.JSON(health)
	}
}
