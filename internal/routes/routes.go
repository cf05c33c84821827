package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/paybridge/paybridge/internal/config"
	"github.com/paybridge/paybridge/internal/issuing"
	"github.com/paybridge/paybridge/internal/ledger"
	"github.com/paybridge/paybridge/internal/logging"
	"github.com/paybridge/paybridge/internal/middleware"
	"github.com/paybridge/paybridge/internal/payments"
	"github.com/paybridge/paybridge/internal/paypal"
	"github.com/paybridge/paybridge/internal/provider"
	"github.com/paybridge/paybridge/internal/reconcile"
	"github.com/paybridge/paybridge/internal/stripe"
	"github.com/paybridge/paybridge/internal/webhooks"
)

// Deps groups the shared dependencies handed to route constructors.
// DB and Cache may be nil; the affected features (topup persistence,
// webhook replay detection) degrade gracefully.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup wires middleware and all route groups onto the Fiber app.
//
// Adapter selection: the in-memory ledger backs every operation unless a
// live provider is both configured and enabled through the double gate
// (ENABLE_LIVE_MODE plus the per-provider flag). A configured but gated
// provider still serves webhook verification, which moves no money.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	mock := ledger.New()

	var (
		paymentAdapter provider.PaymentAdapter = mock
		issuingAdapter provider.IssuingAdapter = mock
		stripeVerifier provider.PaymentAdapter = mock
		paypalVerifier provider.PaymentAdapter
	)

	if d.Cfg.PayPal.ClientID != "" && d.Cfg.PayPal.ClientSecret != "" {
		pp, err := paypal.New(paypal.Config{
			ClientID:     d.Cfg.PayPal.ClientID,
			ClientSecret: d.Cfg.PayPal.ClientSecret,
			Sandbox:      d.Cfg.PayPal.Sandbox,
			WebhookID:    d.Cfg.PayPal.WebhookID,
			Timeout:      d.Cfg.HTTPTimeout,
		})
		if err != nil {
			return err
		}
		paypalVerifier = pp
		if d.Cfg.PayPalLive() {
			paymentAdapter = pp
		} else {
			d.Logger.Info("paypal configured but live mode disabled, charges use the mock ledger")
		}
	}

	if d.Cfg.Stripe.APIKey != "" {
		st, err := stripe.New(stripe.Config{
			APIKey:        d.Cfg.Stripe.APIKey,
			WebhookSecret: d.Cfg.Stripe.WebhookSecret,
			Live:          d.Cfg.StripeLive(),
		})
		if err != nil {
			return err
		}
		stripeVerifier = st
		if d.Cfg.StripeLive() {
			paymentAdapter = st
			issuingAdapter = st
		} else {
			d.Logger.Info("stripe configured but live mode disabled, falling back to the mock ledger")
		}
	}

	api := app.Group("/api/v1")

	paymentProc, err := payments.NewProcessor(paymentAdapter)
	if err != nil {
		return err
	}
	paymentHandler := payments.NewHandler(paymentProc)
	api.Post("/charges", paymentHandler.Charge)
	api.Post("/charges/:chargeId/refund", paymentHandler.Refund)

	issuingProc, err := issuing.NewProcessor(issuingAdapter)
	if err != nil {
		return err
	}
	issuingHandler := issuing.NewHandler(issuingProc)
	api.Post("/cardholders", issuingHandler.CreateCardholder)
	api.Post("/cards", issuingHandler.IssueCard)
	api.Get("/cards/:cardId", issuingHandler.GetCard)
	api.Post("/cards/:cardId/load", issuingHandler.LoadFunds)
	api.Post("/cards/:cardId/freeze", issuingHandler.Freeze)
	api.Post("/cards/:cardId/unfreeze", issuingHandler.Unfreeze)
	api.Post("/cards/:cardId/close", issuingHandler.Close)

	var replay *webhooks.ReplayGuard
	if d.Cache != nil {
		replay = webhooks.NewReplayGuard(d.Cache, d.Cfg.ReplayTTL, logging.WithComponent(d.Logger, "webhooks"))
	}
	webhookHandler := webhooks.NewHandler(stripeVerifier, paypalVerifier, d.Cfg.Stripe.WebhookSecret, replay, logging.WithComponent(d.Logger, "webhooks"))
	api.Post("/webhooks/stripe", webhookHandler.Stripe)
	if paypalVerifier != nil {
		api.Post("/webhooks/paypal", webhookHandler.PayPal)
	}

	if reconciler, ok := issuingAdapter.(provider.TopupReconciler); ok {
		var store reconcile.Store = reconcile.NewMemoryStore()
		if d.DB != nil {
			store = reconcile.NewPostgresStore(d.DB)
		}
		svc, err := reconcile.NewService(reconciler, store, logging.WithComponent(d.Logger, "reconcile"))
		if err != nil {
			return err
		}
		api.Post("/reconcile/topups", reconcile.NewHandler(svc).Run)
	}

	return nil
}
