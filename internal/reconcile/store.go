package reconcile

import (
	"context"
	"time"
)

// TopupCredit records one provider top-up attributed to a card. TopupID is
// the provider identifier and doubles as the idempotency key: recording the
// same top-up twice is a no-op.
type TopupCredit struct {
	TopupID     string
	CardID      string
	AmountCents int64
	RecordedAt  time.Time
}

// Store persists reconciled top-up credits.
type Store interface {
	RecordCredit(ctx context.Context, credit TopupCredit) error
	ListCredits(ctx context.Context, cardID string) ([]TopupCredit, error)
}
