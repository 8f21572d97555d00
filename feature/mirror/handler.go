package mirror

import (
	"errors"
	"strconv"

	"zone-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the mirror feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the mirror routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/mirror")
	group.Get("/status", h.HandleStatus)
	group.Post("/sync", h.HandleTriggerSync)
	group.Get("/zones", h.HandleListZones)
	group.Get("/zones/:id/drift", h.HandleZoneDrift)
}

// HandleStatus returns the engine state and the last run summary.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleTriggerSync starts a background reconciliation run.
// Responds 409 when a run is already in flight.
func (h *Handler) HandleTriggerSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.TriggerSync(); err != nil {
		if errors.Is(err, ErrSyncInFlight) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Failed to trigger sync", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
	})
}

// HandleListZones returns all mirrored zones with record/load balancer counts.
func (h *Handler) HandleListZones(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	zones, err := h.service.ListZones(c.Context())
	if err != nil {
		l.Error("Zone listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(zones)
}

// HandleZoneDrift returns a read-only drift report for one mirrored zone.
func (h *Handler) HandleZoneDrift(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	zoneID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid zone id",
		})
	}

	report, err := h.service.Drift(c.Context(), uint(zoneID))
	if err != nil {
		l.Error("Drift check failed", zap.Uint64("zone_id", zoneID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}
