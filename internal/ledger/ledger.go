package ledger

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/paybridge/paybridge/internal/provider"
)

// ID prefixes keep identifiers distinct across entity kinds.
const (
	chargePrefix     = "ch"
	cardholderPrefix = "ich"
	cardPrefix       = "vc"
)

// Ledger is the in-memory mock engine. It owns every charge, cardholder and
// card record it creates and satisfies both the payment and the issuing
// adapter contracts, making it a drop-in stand-in for real providers in
// development and tests.
type Ledger struct {
	mu          sync.RWMutex
	charges     map[string]*provider.Charge
	cardholders map[string]provider.Cardholder
	cards       map[string]*provider.Card
}

var (
	_ provider.PaymentAdapter = (*Ledger)(nil)
	_ provider.IssuingAdapter = (*Ledger)(nil)
)

// New constructs an empty ledger.
func New() *Ledger {
	return &Ledger{
		charges:     make(map[string]*provider.Charge),
		cardholders: make(map[string]provider.Cardholder),
		cards:       make(map[string]*provider.Card),
	}
}

func newID(prefix string) string {
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:])[:12]
}

// Charge records a new successful charge.
func (l *Ledger) Charge(_ context.Context, in provider.ChargeInput) (provider.Charge, error) {
	if in.AmountCents <= 0 {
		return provider.Charge{}, provider.Validationf("amount_cents must be > 0")
	}

	record := provider.Charge{
		ID:          newID(chargePrefix),
		AmountCents: in.AmountCents,
		Currency:    in.Currency,
		Source:      in.Source,
		Description: in.Description,
		Status:      provider.ChargeStatusSucceeded,
	}

	l.mu.Lock()
	l.charges[record.ID] = &record
	l.mu.Unlock()

	return record, nil
}

// Refund accumulates refunded cents against a charge. An unknown charge id
// yields a "not_found" result rather than an error. A zero amount refunds
// whatever remains unrefunded. Amounts beyond the remaining balance are not
// rejected; the running total simply passes the charge amount.
func (l *Ledger) Refund(_ context.Context, in provider.RefundInput) (provider.Refund, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.charges[in.ChargeID]
	if !ok {
		return provider.Refund{ID: in.ChargeID, Status: provider.ChargeStatusNotFound}, nil
	}

	amount := in.AmountCents
	if amount == 0 {
		amount = record.AmountCents - record.RefundedCents
	}

	record.RefundedCents += amount
	if record.RefundedCents >= record.AmountCents {
		record.Status = provider.ChargeStatusRefunded
	}

	return provider.Refund{ID: record.ID, RefundedCents: record.RefundedCents, Status: record.Status}, nil
}

// VerifyWebhook checks a plain HMAC-SHA256 hex signature over the raw
// payload. A mismatch or malformed signature is a false result, never an
// error.
func (l *Ledger) VerifyWebhook(_ context.Context, sig provider.WebhookSignature) (bool, error) {
	mac := hmac.New(sha256.New, []byte(sig.Secret))
	mac.Write(sig.Payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig.Signature)), nil
}

// CreateCardholder registers a cardholder. Records are immutable once created.
func (l *Ledger) CreateCardholder(_ context.Context, name, email string) (provider.Cardholder, error) {
	if name == "" {
		return provider.Cardholder{}, provider.Validationf("name required")
	}

	holder := provider.Cardholder{ID: newID(cardholderPrefix), Name: name, Email: email}

	l.mu.Lock()
	l.cardholders[holder.ID] = holder
	l.mu.Unlock()

	return holder, nil
}

// IssueVirtualCard creates an active card for an existing cardholder. The
// currency is normalized to uppercase.
func (l *Ledger) IssueVirtualCard(_ context.Context, cardholderID, currency string, initialBalanceCents int64) (provider.Card, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.cardholders[cardholderID]; !ok {
		return provider.Card{}, provider.Adapterf("cardholder %s not found", cardholderID)
	}

	card := provider.Card{
		ID:           newID(cardPrefix),
		CardholderID: cardholderID,
		Currency:     strings.ToUpper(currency),
		BalanceCents: initialBalanceCents,
		Status:       provider.CardStatusActive,
	}
	l.cards[card.ID] = &card

	return card, nil
}

// LoadFunds increases a card balance. Balances only ever grow through this
// operation; spend-side accounting lives with the provider.
func (l *Ledger) LoadFunds(_ context.Context, cardID string, amountCents int64) (provider.CardBalance, error) {
	if amountCents <= 0 {
		return provider.CardBalance{}, provider.Adapterf("amount must be > 0")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	card, ok := l.cards[cardID]
	if !ok {
		return provider.CardBalance{}, provider.Adapterf("card %s not found", cardID)
	}

	card.BalanceCents += amountCents
	return provider.CardBalance{ID: cardID, BalanceCents: card.BalanceCents}, nil
}

// GetCard returns a snapshot of the card record.
func (l *Ledger) GetCard(_ context.Context, cardID string) (provider.Card, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	card, ok := l.cards[cardID]
	if !ok {
		return provider.Card{}, provider.Adapterf("card %s not found", cardID)
	}
	return *card, nil
}

// FreezeCard suspends an active card. The balance is retained.
func (l *Ledger) FreezeCard(_ context.Context, cardID string) (provider.CardStatus, error) {
	return l.setStatus(cardID, provider.CardStatusFrozen)
}

// UnfreezeCard reactivates a frozen card.
func (l *Ledger) UnfreezeCard(_ context.Context, cardID string) (provider.CardStatus, error) {
	return l.setStatus(cardID, provider.CardStatusActive)
}

// CloseCard permanently closes a card. Closed is terminal: no later
// transition leaves it.
func (l *Ledger) CloseCard(_ context.Context, cardID string) (provider.CardStatus, error) {
	return l.setStatus(cardID, provider.CardStatusClosed)
}

func (l *Ledger) setStatus(cardID, status string) (provider.CardStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	card, ok := l.cards[cardID]
	if !ok {
		return provider.CardStatus{}, provider.Adapterf("card %s not found", cardID)
	}
	if card.Status == provider.CardStatusClosed {
		return provider.CardStatus{}, provider.Adapterf("card %s is closed", cardID)
	}

	card.Status = status
	return provider.CardStatus{ID: cardID, Status: status}, nil
}
