package issuing

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/paybridge/paybridge/internal/provider"
)

// Handler exposes card issuing endpoints.
type Handler struct {
	processor *Processor
}

// NewHandler constructs an issuing handler.
func NewHandler(processor *Processor) *Handler {
	return &Handler{processor: processor}
}

type cardholderRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type issueCardRequest struct {
	CardholderID        string `json:"cardholder_id"`
	Currency            string `json:"currency"`
	InitialBalanceCents int64  `json:"initial_balance_cents"`
}

type loadFundsRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// CreateCardholder registers a cardholder.
func (h *Handler) CreateCardholder(c *fiber.Ctx) error {
	var req cardholderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	holder, err := h.processor.CreateCardholder(c.UserContext(), req.Name, req.Email)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(holder)
}

// IssueCard issues a virtual card.
func (h *Handler) IssueCard(c *fiber.Ctx) error {
	var req issueCardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	card, err := h.processor.IssueVirtualCard(c.UserContext(), req.CardholderID, req.Currency, req.InitialBalanceCents)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(card)
}

// LoadFunds adds funds to a card.
func (h *Handler) LoadFunds(c *fiber.Ctx) error {
	var req loadFundsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	balance, err := h.processor.LoadFunds(c.UserContext(), c.Params("cardId"), req.AmountCents)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(balance)
}

// GetCard returns a card record.
func (h *Handler) GetCard(c *fiber.Ctx) error {
	card, err := h.processor.GetCard(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(card)
}

// Freeze suspends a card.
func (h *Handler) Freeze(c *fiber.Ctx) error {
	status, err := h.processor.FreezeCard(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(status)
}

// Unfreeze reactivates a card.
func (h *Handler) Unfreeze(c *fiber.Ctx) error {
	status, err := h.processor.UnfreezeCard(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(status)
}

// Close closes a card.
func (h *Handler) Close(c *fiber.Ctx) error {
	status, err := h.processor.CloseCard(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(status)
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
