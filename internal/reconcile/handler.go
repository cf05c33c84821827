package reconcile

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/paybridge/paybridge/internal/provider"
)

// Handler exposes the reconciliation sweep over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Run triggers a sweep of provider topups created at or after the "since"
// unix timestamp (default 0, the full history).
func (h *Handler) Run(c *fiber.Ctx) error {
	since := int64(0)
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "since must be a non-negative unix timestamp"})
		}
		since = parsed
	}

	topups, err := h.service.Run(c.UserContext(), since)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, provider.ErrAdapter) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"observed": len(topups), "topups": topups})
}
