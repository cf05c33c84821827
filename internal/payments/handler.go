package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/paybridge/paybridge/internal/provider"
)

// Handler exposes payment endpoints.
type Handler struct {
	processor *Processor
}

// NewHandler constructs a payment handler.
func NewHandler(processor *Processor) *Handler {
	return &Handler{processor: processor}
}

type chargeRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

type refundRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// Charge creates a charge through the configured adapter.
func (h *Handler) Charge(c *fiber.Ctx) error {
	var req chargeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	charge, err := h.processor.Charge(c.UserContext(), provider.ChargeInput{
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Source:      req.Source,
		Description: req.Description,
	})
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(charge)
}

// Refund refunds a charge, fully when no amount is given.
func (h *Handler) Refund(c *fiber.Ctx) error {
	chargeID := c.Params("chargeId")
	var req refundRequest
	// An empty body means "refund the remaining balance".
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	refund, err := h.processor.Refund(c.UserContext(), provider.RefundInput{
		ChargeID:    chargeID,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		return mapError(err)
	}

	if refund.Status == provider.ChargeStatusNotFound {
		return c.Status(http.StatusNotFound).JSON(refund)
	}
	return c.Status(http.StatusOK).JSON(refund)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, provider.ErrValidation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, provider.ErrAdapter):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
