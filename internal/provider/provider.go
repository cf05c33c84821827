package provider

import "context"

// Charge statuses reported by payment adapters.
const (
	ChargeStatusSucceeded = "succeeded"
	ChargeStatusRefunded  = "refunded"
	ChargeStatusNotFound  = "not_found"
)

// Card statuses reported by issuing adapters.
const (
	CardStatusActive = "active"
	CardStatusFrozen = "frozen"
	CardStatusClosed = "closed"
)

// Charge is the record returned by a successful charge operation.
type Charge struct {
	ID            string `json:"id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Source        string `json:"source"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	RefundedCents int64  `json:"refunded_cents"`
}

// Refund captures the outcome of a refund request. A refund against an
// unknown charge carries Status "not_found" instead of an error.
type Refund struct {
	ID            string `json:"id"`
	RefundedCents int64  `json:"refunded_cents"`
	Status        string `json:"status"`
}

// Cardholder identifies the person a virtual card is issued to.
type Cardholder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Card is a virtual prepaid card with a balance held by the provider.
type Card struct {
	ID           string `json:"id"`
	CardholderID string `json:"cardholder_id"`
	Currency     string `json:"currency"`
	BalanceCents int64  `json:"balance_cents"`
	Status       string `json:"status"`
}

// CardBalance is the outcome of loading funds onto a card.
type CardBalance struct {
	ID           string `json:"id"`
	BalanceCents int64  `json:"balance_cents"`
}

// CardStatus is the outcome of a card lifecycle transition.
type CardStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Topup is a provider-side balance funding event observed during
// reconciliation. CardID is empty when the provider record carried no card
// reference.
type Topup struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Created     int64  `json:"created"`
	CardID      string `json:"card_id,omitempty"`
}

// ChargeInput carries the caller-provided fields for a charge.
type ChargeInput struct {
	AmountCents int64
	Currency    string
	Source      string
	Description string
}

// RefundInput identifies the charge to refund. AmountCents zero means
// "refund the remaining unrefunded balance".
type RefundInput struct {
	ChargeID    string
	AmountCents int64
}

// WebhookSignature bundles the raw payload of an inbound webhook with the
// signature material the provider attached to it. HMAC providers use
// Signature and Secret; remote-verification providers read their discrete
// transmission headers from Headers.
type WebhookSignature struct {
	Payload   []byte
	Signature string
	Secret    string
	Headers   map[string]string
}

// PaymentAdapter is the payment capability every provider implementation
// (including the in-memory ledger) satisfies.
type PaymentAdapter interface {
	Charge(ctx context.Context, in ChargeInput) (Charge, error)
	Refund(ctx context.Context, in RefundInput) (Refund, error)
	VerifyWebhook(ctx context.Context, sig WebhookSignature) (bool, error)
}

// IssuingAdapter is the card-issuing capability.
type IssuingAdapter interface {
	CreateCardholder(ctx context.Context, name, email string) (Cardholder, error)
	IssueVirtualCard(ctx context.Context, cardholderID, currency string, initialBalanceCents int64) (Card, error)
	LoadFunds(ctx context.Context, cardID string, amountCents int64) (CardBalance, error)
	GetCard(ctx context.Context, cardID string) (Card, error)
	FreezeCard(ctx context.Context, cardID string) (CardStatus, error)
	UnfreezeCard(ctx context.Context, cardID string) (CardStatus, error)
	CloseCard(ctx context.Context, cardID string) (CardStatus, error)
}

// TopupUpdateFunc receives one reconciled top-up that carried a card
// reference.
type TopupUpdateFunc func(cardID string, amountCents int64, topupID string) error

// TopupReconciler is an optional issuing capability: it lists provider-side
// top-ups completed at or after the given unix timestamp and invokes fn for
// each one whose metadata references a card. Top-ups without a card
// reference are skipped; the full observed list is returned either way.
type TopupReconciler interface {
	ReconcileTopups(ctx context.Context, since int64, fn TopupUpdateFunc) ([]Topup, error)
}
