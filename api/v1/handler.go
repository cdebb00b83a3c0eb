package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"thoughtburn/internal/analytics"
	"thoughtburn/internal/preferences"
)

const (
	msgThoughtBurned  = "Thought burned"
	errInvalidRequest = "Invalid request"
	errSaveFailed     = "Failed to save preferences"
)

// Handlers serves the JSON API on top of the analytics store and the
// preferences service.
type Handlers struct {
	store *analytics.Store
	prefs *preferences.Service
}

func NewHandlers(store *analytics.Store, prefs *preferences.Service) *Handlers {
	return &Handlers{store: store, prefs: prefs}
}

// TodayResponse is the body of GET /api/v1/analytics/today.
type TodayResponse struct {
	Count int `json:"count"`
}

// BurnThoughtHandler records one burned thought. The store never fails the
// request; persistence problems are logged and counted there.
func (h *Handlers) BurnThoughtHandler(ctx *cartridge.Context) error {
	ctx.Logger.Debug("Received burn request", slog.String("method", ctx.Method()), slog.String("path", ctx.Path()))

	h.store.Record(ctx.Ctx.UserContext())

	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": msgThoughtBurned,
		"status":  http.StatusAccepted,
	})
}

func (h *Handlers) TodayHandler(ctx *cartridge.Context) error {
	return ctx.JSON(TodayResponse{Count: h.store.TodayCount(ctx.Ctx.UserContext())})
}

func (h *Handlers) ProgressHandler(ctx *cartridge.Context) error {
	return ctx.JSON(h.store.WeeklyProgress(ctx.Ctx.UserContext()))
}

// SnapshotHandler returns the full stored history in its persisted shape.
func (h *Handlers) SnapshotHandler(ctx *cartridge.Context) error {
	return ctx.JSON(h.store.Snapshot(ctx.Ctx.UserContext()))
}

func (h *Handlers) DashboardHandler(ctx *cartridge.Context) error {
	return ctx.JSON(analytics.BuildDashboard(ctx.Ctx.UserContext(), h.store))
}

func (h *Handlers) GetPreferencesHandler(ctx *cartridge.Context) error {
	return ctx.JSON(h.prefs.Current())
}

// UpdatePreferencesHandler applies a partial update. Fields left out of the
// body keep their current value.
func (h *Handlers) UpdatePreferencesHandler(ctx *cartridge.Context) error {
	var patch preferences.Patch
	if err := ctx.Ctx.BodyParser(&patch); err != nil {
		ctx.Logger.Debug("Failed to parse preferences request", slog.Any("error", err))
		return handleError(ctx.Ctx, fiber.NewError(http.StatusBadRequest, errInvalidRequest))
	}

	updated, err := h.prefs.Update(ctx.Ctx.UserContext(), patch)
	if err != nil {
		if errors.Is(err, preferences.ErrInvalidPatch) {
			return handleError(ctx.Ctx, err)
		}
		ctx.Logger.Error("Failed to update preferences", slog.Any("error", err))
		return handleError(ctx.Ctx, fiber.NewError(http.StatusInternalServerError, errSaveFailed))
	}

	return ctx.JSON(updated)
}

func handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	}

	return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
		"error": errInvalidRequest,
	})
}
