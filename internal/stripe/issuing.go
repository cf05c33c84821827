package stripe

import (
	"context"
	"strings"

	stripesdk "github.com/stripe/stripe-go/v72"

	"github.com/paybridge/paybridge/internal/provider"
)

// cardMetadataKey links a platform top-up back to the card it funds.
const cardMetadataKey = "card_id"

var (
	_ provider.IssuingAdapter  = (*Adapter)(nil)
	_ provider.TopupReconciler = (*Adapter)(nil)
)

// CreateCardholder registers an individual cardholder with Stripe Issuing.
func (a *Adapter) CreateCardholder(_ context.Context, name, email string) (provider.Cardholder, error) {
	params := &stripesdk.IssuingCardholderParams{
		Type: stripesdk.String("individual"),
		Name: stripesdk.String(name),
	}
	if email != "" {
		params.Email = stripesdk.String(email)
	}

	holder, err := a.api.IssuingCardholders.New(params)
	if err != nil {
		return provider.Cardholder{}, provider.Adapterf("stripe api error: %v", err)
	}

	return provider.Cardholder{ID: holder.ID, Name: holder.Name, Email: holder.Email}, nil
}

// IssueVirtualCard creates a virtual card linked to the cardholder.
func (a *Adapter) IssueVirtualCard(_ context.Context, cardholderID, currency string, _ int64) (provider.Card, error) {
	params := &stripesdk.IssuingCardParams{
		Cardholder: stripesdk.String(cardholderID),
		Type:       stripesdk.String("virtual"),
		Currency:   stripesdk.String(strings.ToUpper(currency)),
	}

	card, err := a.api.IssuingCards.New(params)
	if err != nil {
		return provider.Card{}, provider.Adapterf("stripe api error: %v", err)
	}

	return a.toCard(card), nil
}

// LoadFunds tops up the platform balance that Issuing cards spend from. The
// created top-up carries the card id in its metadata so reconciliation can
// attribute the funds later; the returned balance is the top-up amount, not
// a per-card balance, because Stripe has no card-level load API.
func (a *Adapter) LoadFunds(_ context.Context, cardID string, amountCents int64) (provider.CardBalance, error) {
	params := &stripesdk.TopupParams{
		Amount:      stripesdk.Int64(amountCents),
		Currency:    stripesdk.String("usd"),
		Description: stripesdk.String("card top-up"),
	}
	params.AddMetadata(cardMetadataKey, cardID)

	topup, err := a.api.Topups.New(params)
	if err != nil {
		return provider.CardBalance{}, provider.Adapterf("stripe api error: %v", err)
	}

	return provider.CardBalance{ID: cardID, BalanceCents: topup.Amount}, nil
}

// GetCard retrieves a card record.
func (a *Adapter) GetCard(_ context.Context, cardID string) (provider.Card, error) {
	card, err := a.api.IssuingCards.Get(cardID, nil)
	if err != nil {
		return provider.Card{}, provider.Adapterf("stripe api error: %v", err)
	}
	return a.toCard(card), nil
}

// FreezeCard marks a card inactive.
func (a *Adapter) FreezeCard(_ context.Context, cardID string) (provider.CardStatus, error) {
	return a.setStatus(cardID, "inactive", provider.CardStatusFrozen)
}

// UnfreezeCard reactivates a card.
func (a *Adapter) UnfreezeCard(_ context.Context, cardID string) (provider.CardStatus, error) {
	return a.setStatus(cardID, "active", provider.CardStatusActive)
}

// CloseCard cancels a card. Stripe cancellation is permanent.
func (a *Adapter) CloseCard(_ context.Context, cardID string) (provider.CardStatus, error) {
	return a.setStatus(cardID, "canceled", provider.CardStatusClosed)
}

// ReconcileTopups lists succeeded top-ups created at or after since and
// invokes fn for each one whose metadata references a card. Top-ups without
// a card reference are skipped; every observed record is returned so the
// caller can inspect the skipped subset.
func (a *Adapter) ReconcileTopups(_ context.Context, since int64, fn provider.TopupUpdateFunc) ([]provider.Topup, error) {
	params := &stripesdk.TopupListParams{Status: stripesdk.String("succeeded")}
	if since > 0 {
		params.CreatedRange = &stripesdk.RangeQueryParams{GreaterThanOrEqual: since}
	}

	var observed []provider.Topup
	iter := a.api.Topups.List(params)
	for iter.Next() {
		topup := iter.Topup()
		record := provider.Topup{
			ID:          topup.ID,
			AmountCents: topup.Amount,
			Currency:    strings.ToUpper(string(topup.Currency)),
			Status:      string(topup.Status),
			Created:     topup.Created,
			CardID:      topup.Metadata[cardMetadataKey],
		}
		observed = append(observed, record)

		if record.CardID == "" || fn == nil {
			continue
		}
		if err := fn(record.CardID, record.AmountCents, record.ID); err != nil {
			return observed, err
		}
	}
	if err := iter.Err(); err != nil {
		return observed, provider.Adapterf("stripe api error: %v", err)
	}

	return observed, nil
}

func (a *Adapter) setStatus(cardID, stripeStatus, status string) (provider.CardStatus, error) {
	params := &stripesdk.IssuingCardParams{Status: stripesdk.String(stripeStatus)}
	if _, err := a.api.IssuingCards.Update(cardID, params); err != nil {
		return provider.CardStatus{}, provider.Adapterf("stripe api error: %v", err)
	}
	return provider.CardStatus{ID: cardID, Status: status}, nil
}

func (a *Adapter) toCard(card *stripesdk.IssuingCard) provider.Card {
	record := provider.Card{
		ID:       card.ID,
		Currency: strings.ToUpper(string(card.Currency)),
	}
	if card.Cardholder != nil {
		record.CardholderID = card.Cardholder.ID
	}

	switch card.Status {
	case stripesdk.IssuingCardStatusActive:
		record.Status = provider.CardStatusActive
	case stripesdk.IssuingCardStatusInactive:
		record.Status = provider.CardStatusFrozen
	case stripesdk.IssuingCardStatusCanceled:
		record.Status = provider.CardStatusClosed
	default:
		record.Status = string(card.Status)
	}

	return record
}
