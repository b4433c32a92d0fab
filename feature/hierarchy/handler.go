package hierarchy

import (
	"errors"

	"cohort-indexer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for crawls.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the crawl routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/crawl")
	group.Get("/status", h.HandleStatus)
	group.Post("/", h.HandleTrigger)
}

// HandleStatus returns whether a crawl is running and the last report.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleTrigger starts a crawl in the background.
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runID, err := h.service.Trigger()
	if errors.Is(err, ErrCrawlRunning) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("Crawl trigger failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	l.Info("Crawl triggered", zap.String("run_id", runID))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"run_id": runID,
	})
}
