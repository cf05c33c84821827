package payments

import (
	"context"

	"github.com/paybridge/paybridge/internal/provider"
)

// Processor is the payment facade: it validates caller input and delegates
// to whichever adapter implementation was injected. Adapter failures
// propagate untranslated.
type Processor struct {
	adapter provider.PaymentAdapter
}

// NewProcessor wires the facade to an adapter.
func NewProcessor(adapter provider.PaymentAdapter) (*Processor, error) {
	if adapter == nil {
		return nil, provider.Validationf("payment adapter required")
	}
	return &Processor{adapter: adapter}, nil
}

// Charge validates the amount and forwards the request to the adapter.
func (p *Processor) Charge(ctx context.Context, in provider.ChargeInput) (provider.Charge, error) {
	if in.AmountCents <= 0 {
		return provider.Charge{}, provider.Validationf("amount_cents must be > 0")
	}
	return p.adapter.Charge(ctx, in)
}

// Refund validates the charge id and forwards. A zero amount requests the
// remaining unrefunded balance.
func (p *Processor) Refund(ctx context.Context, in provider.RefundInput) (provider.Refund, error) {
	if in.ChargeID == "" {
		return provider.Refund{}, provider.Validationf("charge_id required")
	}
	return p.adapter.Refund(ctx, in)
}

// VerifyWebhook forwards untouched. Webhook payloads are untrusted by
// definition, so no shape validation happens before the cryptographic check.
func (p *Processor) VerifyWebhook(ctx context.Context, sig provider.WebhookSignature) (bool, error) {
	return p.adapter.VerifyWebhook(ctx, sig)
}
