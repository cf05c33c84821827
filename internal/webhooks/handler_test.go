package webhooks

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/paybridge/paybridge/internal/logging"
	"github.com/paybridge/paybridge/internal/provider"
)

type stubAdapter struct {
	ok      bool
	err     error
	lastSig provider.WebhookSignature
}

func (a *stubAdapter) Charge(_ context.Context, _ provider.ChargeInput) (provider.Charge, error) {
	return provider.Charge{}, provider.Adapterf("not supported")
}

func (a *stubAdapter) Refund(_ context.Context, _ provider.RefundInput) (provider.Refund, error) {
	return provider.Refund{}, provider.Adapterf("not supported")
}

func (a *stubAdapter) VerifyWebhook(_ context.Context, sig provider.WebhookSignature) (bool, error) {
	a.lastSig = sig
	return a.ok, a.err
}

func setupApp(t *testing.T, stripe, paypal *stubAdapter, replay *ReplayGuard) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := NewHandler(stripe, paypal, "whsec_test", replay, logging.Discard())
	app.Post("/webhooks/stripe", h.Stripe)
	app.Post("/webhooks/paypal", h.PayPal)
	return app
}

func TestStripeWebhookVerdicts(t *testing.T) {
	stripe := &stubAdapter{ok: true}
	app := setupApp(t, stripe, &stubAdapter{}, nil)

	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1700000000,v1=abc")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if string(stripe.lastSig.Payload) != `{"id":"evt_1"}` {
		t.Fatalf("raw payload not forwarded: %s", stripe.lastSig.Payload)
	}
	if stripe.lastSig.Signature != "t=1700000000,v1=abc" {
		t.Fatalf("signature header not forwarded: %s", stripe.lastSig.Signature)
	}
	if stripe.lastSig.Secret != "whsec_test" {
		t.Fatalf("endpoint secret not forwarded: %s", stripe.lastSig.Secret)
	}

	stripe.ok = false
	resp, _ = app.Test(httptest.NewRequest(fiber.MethodPost, "/webhooks/stripe", strings.NewReader("{}")))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for rejected signature, got %d", resp.StatusCode)
	}

	stripe.ok = false
	stripe.err = provider.Adapterf("stripe unreachable")
	resp, _ = app.Test(httptest.NewRequest(fiber.MethodPost, "/webhooks/stripe", strings.NewReader("{}")))
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502 for adapter failure, got %d", resp.StatusCode)
	}
}

func TestPayPalWebhookForwardsHeaders(t *testing.T) {
	paypalAdapter := &stubAdapter{ok: true}
	app := setupApp(t, &stubAdapter{}, paypalAdapter, nil)

	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/paypal", strings.NewReader("{}"))
	req.Header.Set("Paypal-Transmission-Id", "tid-1")
	req.Header.Set("Paypal-Transmission-Time", "2024-01-01T00:00:00Z")
	req.Header.Set("Paypal-Cert-Url", "https://api.paypal.com/cert")
	req.Header.Set("Paypal-Auth-Algo", "SHA256withRSA")
	req.Header.Set("Paypal-Transmission-Sig", "sig")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	headers := paypalAdapter.lastSig.Headers
	if headers["paypal-transmission-id"] != "tid-1" || headers["paypal-transmission-sig"] != "sig" {
		t.Fatalf("transmission headers not forwarded: %+v", headers)
	}
}

func TestReplayGuardDropsDuplicates(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	guard := NewReplayGuard(cache, time.Minute, logging.Discard())
	app := setupApp(t, &stubAdapter{ok: true}, &stubAdapter{}, guard)

	deliver := func() int {
		req := httptest.NewRequest(fiber.MethodPost, "/webhooks/stripe", strings.NewReader(`{"id":"evt_dup"}`))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	if code := deliver(); code != fiber.StatusOK {
		t.Fatalf("first delivery: expected 200, got %d", code)
	}
	if code := deliver(); code != fiber.StatusConflict {
		t.Fatalf("replay: expected 409, got %d", code)
	}
}

func TestReplayGuardFailsOpenWithoutRedis(t *testing.T) {
	guard := NewReplayGuard(nil, time.Minute, logging.Discard())
	ctx := context.Background()

	if !guard.FirstDelivery(ctx, "stripe", "evt_1") {
		t.Fatalf("nil cache must fail open")
	}
	if !guard.FirstDelivery(ctx, "stripe", "evt_1") {
		t.Fatalf("nil cache must fail open on repeats too")
	}
}
