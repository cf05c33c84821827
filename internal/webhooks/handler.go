package webhooks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/paybridge/paybridge/internal/paypal"
	"github.com/paybridge/paybridge/internal/provider"
)

const stripeSignatureHeader = "Stripe-Signature"

// Handler receives provider webhook deliveries, verifies their signatures
// through the matching adapter and answers with the verification verdict.
type Handler struct {
	stripe       provider.PaymentAdapter
	paypal       provider.PaymentAdapter
	stripeSecret string
	replay       *ReplayGuard
	logger       *slog.Logger
}

// NewHandler constructs a webhook handler. The replay guard may be nil, in
// which case deliveries are never deduplicated.
func NewHandler(stripeAdapter, paypalAdapter provider.PaymentAdapter, stripeSecret string, replay *ReplayGuard, logger *slog.Logger) *Handler {
	return &Handler{
		stripe:       stripeAdapter,
		paypal:       paypalAdapter,
		stripeSecret: stripeSecret,
		replay:       replay,
		logger:       logger,
	}
}

// Stripe verifies a Stripe webhook delivery signed with the combined
// Stripe-Signature header.
func (h *Handler) Stripe(c *fiber.Ctx) error {
	sig := provider.WebhookSignature{
		Payload:   c.Body(),
		Signature: c.Get(stripeSignatureHeader),
		Secret:    h.stripeSecret,
	}
	return h.respond(c, h.stripe, "stripe", sig, eventID(c.Body()))
}

// PayPal verifies a PayPal webhook delivery signed with the five discrete
// transmission headers.
func (h *Handler) PayPal(c *fiber.Ctx) error {
	sig := provider.WebhookSignature{
		Payload: c.Body(),
		Headers: map[string]string{
			paypal.HeaderTransmissionID:   c.Get(paypal.HeaderTransmissionID),
			paypal.HeaderTransmissionTime: c.Get(paypal.HeaderTransmissionTime),
			paypal.HeaderCertURL:          c.Get(paypal.HeaderCertURL),
			paypal.HeaderAuthAlgo:         c.Get(paypal.HeaderAuthAlgo),
			paypal.HeaderTransmissionSig:  c.Get(paypal.HeaderTransmissionSig),
		},
	}
	return h.respond(c, h.paypal, "paypal", sig, c.Get(paypal.HeaderTransmissionID))
}

func (h *Handler) respond(c *fiber.Ctx, adapter provider.PaymentAdapter, providerName string, sig provider.WebhookSignature, deliveryID string) error {
	ok, err := adapter.VerifyWebhook(c.UserContext(), sig)
	if err != nil {
		if errors.Is(err, provider.ErrAdapter) {
			h.logger.Error("webhook verification unavailable", slog.String("provider", providerName), slog.Any("error", err))
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{"ok": false})
		}
		return err
	}
	if !ok {
		h.logger.Warn("webhook signature rejected", slog.String("provider", providerName))
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"ok": false})
	}

	if !h.replay.FirstDelivery(c.UserContext(), providerName, deliveryID) {
		h.logger.Warn("webhook replay dropped", slog.String("provider", providerName), slog.String("event_id", deliveryID))
		return c.Status(http.StatusConflict).JSON(fiber.Map{"ok": false})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}

// eventID pulls the event identifier out of a provider payload. Payloads
// without one are not deduplicated.
func eventID(payload []byte) string {
	var event struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return ""
	}
	return event.ID
}
