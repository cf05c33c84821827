package issuing

import (
	"context"

	"github.com/paybridge/paybridge/internal/provider"
)

// Processor is the issuing facade for virtual prepaid cards. It validates
// caller input and delegates to the injected adapter; currency
// normalization is left to the adapter.
type Processor struct {
	adapter provider.IssuingAdapter
}

// NewProcessor wires the facade to an issuing adapter.
func NewProcessor(adapter provider.IssuingAdapter) (*Processor, error) {
	if adapter == nil {
		return nil, provider.Validationf("issuing adapter required")
	}
	return &Processor{adapter: adapter}, nil
}

// CreateCardholder registers a new cardholder.
func (p *Processor) CreateCardholder(ctx context.Context, name, email string) (provider.Cardholder, error) {
	if name == "" {
		return provider.Cardholder{}, provider.Validationf("name required")
	}
	return p.adapter.CreateCardholder(ctx, name, email)
}

// IssueVirtualCard issues a card for an existing cardholder. An empty
// currency defaults to USD.
func (p *Processor) IssueVirtualCard(ctx context.Context, cardholderID, currency string, initialBalanceCents int64) (provider.Card, error) {
	if cardholderID == "" {
		return provider.Card{}, provider.Validationf("cardholder_id required")
	}
	if currency == "" {
		currency = "USD"
	}
	return p.adapter.IssueVirtualCard(ctx, cardholderID, currency, initialBalanceCents)
}

// LoadFunds adds funds to a card.
func (p *Processor) LoadFunds(ctx context.Context, cardID string, amountCents int64) (provider.CardBalance, error) {
	if amountCents <= 0 {
		return provider.CardBalance{}, provider.Validationf("amount_cents must be > 0")
	}
	return p.adapter.LoadFunds(ctx, cardID, amountCents)
}

// GetCard fetches the current card record.
func (p *Processor) GetCard(ctx context.Context, cardID string) (provider.Card, error) {
	if cardID == "" {
		return provider.Card{}, provider.Validationf("card_id required")
	}
	return p.adapter.GetCard(ctx, cardID)
}

// FreezeCard suspends a card.
func (p *Processor) FreezeCard(ctx context.Context, cardID string) (provider.CardStatus, error) {
	return p.adapter.FreezeCard(ctx, cardID)
}

// UnfreezeCard reactivates a frozen card.
func (p *Processor) UnfreezeCard(ctx context.Context, cardID string) (provider.CardStatus, error) {
	return p.adapter.UnfreezeCard(ctx, cardID)
}

// CloseCard closes a card permanently.
func (p *Processor) CloseCard(ctx context.Context, cardID string) (provider.CardStatus, error) {
	return p.adapter.CloseCard(ctx, cardID)
}
