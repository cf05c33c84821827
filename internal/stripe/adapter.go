package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	stripesdk "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	"github.com/paybridge/paybridge/internal/provider"
)

// Config carries the Stripe credentials and the provider-level live flag.
type Config struct {
	APIKey        string
	WebhookSecret string
	Live          bool
}

// Adapter talks to Stripe through the official SDK. Webhook signatures are
// verified locally without calling Stripe.
type Adapter struct {
	api           *client.API
	webhookSecret string
}

var _ provider.PaymentAdapter = (*Adapter)(nil)

// New builds a Stripe adapter. A live-gated adapter refuses test keys so a
// misconfigured environment fails at construction instead of at the first
// money-moving call.
func New(cfg Config) (*Adapter, error) {
	return newWithBackends(cfg, nil)
}

func newWithBackends(cfg Config, backends *stripesdk.Backends) (*Adapter, error) {
	if !strings.HasPrefix(cfg.APIKey, "sk_") {
		return nil, provider.Validationf("stripe api key must start with sk_")
	}
	if cfg.Live && strings.HasPrefix(cfg.APIKey, "sk_test") {
		return nil, provider.Adapterf("live mode requires a live stripe key, got a test key")
	}

	api := &client.API{}
	api.Init(cfg.APIKey, backends)

	return &Adapter{api: api, webhookSecret: cfg.WebhookSecret}, nil
}

// Charge creates a charge against the given payment source.
func (a *Adapter) Charge(_ context.Context, in provider.ChargeInput) (provider.Charge, error) {
	params := &stripesdk.ChargeParams{
		Amount:      stripesdk.Int64(in.AmountCents),
		Currency:    stripesdk.String(strings.ToLower(in.Currency)),
		Description: stripesdk.String(in.Description),
	}
	if err := params.SetSource(in.Source); err != nil {
		return provider.Charge{}, provider.Adapterf("stripe source: %v", err)
	}

	ch, err := a.api.Charges.New(params)
	if err != nil {
		return provider.Charge{}, provider.Adapterf("stripe api error: %v", err)
	}

	return provider.Charge{
		ID:            ch.ID,
		AmountCents:   ch.Amount,
		Currency:      strings.ToUpper(string(ch.Currency)),
		Source:        in.Source,
		Description:   ch.Description,
		Status:        string(ch.Status),
		RefundedCents: ch.AmountRefunded,
	}, nil
}

// Refund refunds a charge, fully when no amount is given.
func (a *Adapter) Refund(_ context.Context, in provider.RefundInput) (provider.Refund, error) {
	params := &stripesdk.RefundParams{Charge: stripesdk.String(in.ChargeID)}
	if in.AmountCents > 0 {
		params.Amount = stripesdk.Int64(in.AmountCents)
	}

	ref, err := a.api.Refunds.New(params)
	if err != nil {
		return provider.Refund{}, provider.Adapterf("stripe api error: %v", err)
	}

	return provider.Refund{ID: ref.ID, RefundedCents: ref.Amount, Status: string(ref.Status)}, nil
}

// VerifyWebhook checks a Stripe-Signature header. Stripe signs
// "<timestamp>.<payload>" with the endpoint secret; the header carries the
// timestamp as t and the hex HMAC as v1. A malformed header is a false
// result, not an error.
func (a *Adapter) VerifyWebhook(_ context.Context, sig provider.WebhookSignature) (bool, error) {
	secret := sig.Secret
	if secret == "" {
		secret = a.webhookSecret
	}

	timestamp, signature, ok := parseSignatureHeader(sig.Signature)
	if !ok {
		return false, nil
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(sig.Payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// parseSignatureHeader extracts t and v1 from a comma-separated list of
// key=value pairs, e.g. "t=1700000000,v1=abc,v0=old".
func parseSignatureHeader(header string) (timestamp, signature string, ok bool) {
	for _, pair := range strings.Split(header, ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return "", "", false
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", false
	}
	return timestamp, signature, true
}
