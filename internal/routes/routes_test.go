package routes

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/paybridge/paybridge/internal/config"
	"github.com/paybridge/paybridge/internal/logging"
)

func newTestApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()

	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body map[string]any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			// Fiber's default error handler emits plain-text bodies;
			// callers asserting only on status get a nil map.
			decoded = nil
		}
	}
	return resp, decoded
}

func signHMAC(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHealthzWithoutBackends(t *testing.T) {
	app := newTestApp(t, config.Config{})

	resp, body := doJSON(t, app, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	status, ok := body["status"].(map[string]any)
	if !ok {
		t.Fatalf("missing status object in %v", body)
	}
	if status["postgres"] != "disabled" || status["redis"] != "disabled" {
		t.Fatalf("unexpected backend status %v", status)
	}
}

func TestChargeAndRefundThroughMockLedger(t *testing.T) {
	app := newTestApp(t, config.Config{})

	resp, charge := doJSON(t, app, http.MethodPost, "/api/v1/charges", map[string]any{
		"amount_cents": 1500,
		"currency":     "usd",
		"source":       "tok_visa",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("charge status = %d, want 201", resp.StatusCode)
	}
	chargeID, _ := charge["id"].(string)
	if chargeID == "" {
		t.Fatalf("charge response missing id: %v", charge)
	}

	resp, refund := doJSON(t, app, http.MethodPost, "/api/v1/charges/"+chargeID+"/refund", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refund status = %d, want 200", resp.StatusCode)
	}
	if got := refund["refunded_cents"]; got != float64(1500) {
		t.Fatalf("refunded_cents = %v, want 1500", got)
	}
}

func TestRefundUnknownChargeReturns404(t *testing.T) {
	app := newTestApp(t, config.Config{})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/charges/ch_missing/refund", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCardLifecycleThroughMockLedger(t *testing.T) {
	app := newTestApp(t, config.Config{})

	resp, holder := doJSON(t, app, http.MethodPost, "/api/v1/cardholders", map[string]any{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("cardholder status = %d, want 201", resp.StatusCode)
	}
	holderID, _ := holder["id"].(string)

	resp, card := doJSON(t, app, http.MethodPost, "/api/v1/cards", map[string]any{
		"cardholder_id":         holderID,
		"currency":              "usd",
		"initial_balance_cents": 2000,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("issue card status = %d, want 201", resp.StatusCode)
	}
	cardID, _ := card["id"].(string)
	if cardID == "" {
		t.Fatalf("card response missing id: %v", card)
	}

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/cards/%s/load", cardID), map[string]any{
		"amount_cents": 500,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d, want 200", resp.StatusCode)
	}

	resp, fetched := doJSON(t, app, http.MethodGet, "/api/v1/cards/"+cardID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get card status = %d, want 200", resp.StatusCode)
	}
	if got := fetched["balance_cents"]; got != float64(2500) {
		t.Fatalf("balance_cents = %v, want 2500", got)
	}

	for _, step := range []struct {
		action string
		want   string
	}{
		{"freeze", "frozen"},
		{"unfreeze", "active"},
		{"close", "closed"},
	} {
		resp, status := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/cards/%s/%s", cardID, step.action), nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", step.action, resp.StatusCode)
		}
		if status["status"] != step.want {
			t.Fatalf("%s -> status %v, want %s", step.action, status["status"], step.want)
		}
	}
}

func TestChargeValidationReturns400(t *testing.T) {
	app := newTestApp(t, config.Config{})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/charges", map[string]any{
		"amount_cents": 0,
		"currency":     "usd",
		"source":       "tok_visa",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStripeWebhookRouteWithMockVerifier(t *testing.T) {
	cfg := config.Config{}
	cfg.Stripe.WebhookSecret = "whsec_mock"
	app := newTestApp(t, cfg)

	payload := []byte(`{"id":"evt_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signHMAC(payload, "whsec_mock"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("webhook request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestPayPalWebhookRouteAbsentWithoutCredentials(t *testing.T) {
	app := newTestApp(t, config.Config{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paypal", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 404 or 405", resp.StatusCode)
	}
}
