package portals

import (
	"errors"

	"cohort-indexer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for portal records.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the portal routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/portals")
	group.Get("/", h.HandleList)
	group.Get("/summary", h.HandleSummary)
	group.Get("/:id", h.HandleGet)
}

// HandleList returns every record sorted by name, then cohort name.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	records, err := h.service.List(c.Context())
	if err != nil {
		l.Error("Listing portal records failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if records == nil {
		records = []Record{}
	}
	return c.JSON(records)
}

// HandleSummary returns the plain-text summary table.
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	text, err := h.service.Summary(c.Context())
	if err != nil {
		l.Error("Rendering summary failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

// HandleGet returns one record by identity (scheme-stripped address).
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	rec, err := h.service.Get(c.Context(), id)
	if errors.Is(err, ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "portal not found",
		})
	}
	if err != nil {
		l.Error("Portal lookup failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(rec)
}
