package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/paybridge/paybridge/internal/config"
)

// validate-live inspects the environment and reports whether live
// (money-moving) provider calls would actually be enabled, and with
// which credentials. Exits non-zero when the configuration is unsafe
// or inconsistent.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var problems, warnings []string

	if !cfg.EnableLiveMode {
		fmt.Println("ENABLE_LIVE_MODE is off: all operations use the mock ledger")
	}

	if cfg.Stripe.Live && cfg.Stripe.APIKey == "" {
		problems = append(problems, "STRIPE_LIVE is on but STRIPE_API_KEY is empty")
	}
	if cfg.Stripe.APIKey != "" && !strings.HasPrefix(cfg.Stripe.APIKey, "sk_") {
		problems = append(problems, "STRIPE_API_KEY does not look like a secret key (expected sk_ prefix)")
	}
	if cfg.StripeLive() && strings.HasPrefix(cfg.Stripe.APIKey, "sk_test") {
		problems = append(problems, "stripe live mode enabled with a test key (sk_test)")
	}
	if cfg.Stripe.Live && !cfg.EnableLiveMode {
		warnings = append(warnings, "STRIPE_LIVE is on but ENABLE_LIVE_MODE is off; card operations will fall back to the mock adapter")
	}
	if cfg.StripeLive() && cfg.Stripe.WebhookSecret == "" {
		warnings = append(warnings, "stripe live mode without STRIPE_WEBHOOK_SECRET; webhook verification will reject everything")
	}

	if cfg.PayPal.Live && (cfg.PayPal.ClientID == "" || cfg.PayPal.ClientSecret == "") {
		problems = append(problems, "PAYPAL_LIVE is on but client credentials are incomplete")
	}
	if cfg.PayPal.Live && !cfg.EnableLiveMode {
		warnings = append(warnings, "PAYPAL_LIVE is on but ENABLE_LIVE_MODE is off; charges will fall back to the mock adapter")
	}
	if cfg.PayPalLive() && cfg.PayPal.Sandbox {
		warnings = append(warnings, "paypal live mode enabled against the sandbox environment")
	}
	if cfg.PayPalLive() && cfg.PayPal.WebhookID == "" {
		warnings = append(warnings, "paypal live mode without PAYPAL_WEBHOOK_ID; webhook verification will fail")
	}

	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, p := range problems {
		fmt.Printf("problem: %s\n", p)
	}

	fmt.Printf("stripe live: %t, paypal live: %t\n", cfg.StripeLive(), cfg.PayPalLive())

	if len(problems) > 0 {
		os.Exit(1)
	}
	fmt.Println("configuration ok")
}
