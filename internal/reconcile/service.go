package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/paybridge/paybridge/internal/provider"
)

// Service drives top-up reconciliation: it asks the provider for completed
// top-ups and records a credit for each one that references a card. Top-ups
// without a card reference are observed but not recorded; the provider list
// is returned so callers can inspect them.
type Service struct {
	reconciler provider.TopupReconciler
	store      Store
	logger     *slog.Logger
}

// NewService builds a reconciliation service.
func NewService(reconciler provider.TopupReconciler, store Store, logger *slog.Logger) (*Service, error) {
	if reconciler == nil {
		return nil, provider.Validationf("topup reconciler required")
	}
	if store == nil {
		return nil, provider.Validationf("credit store required")
	}
	return &Service{reconciler: reconciler, store: store, logger: logger}, nil
}

// Run reconciles top-ups completed at or after since.
func (s *Service) Run(ctx context.Context, since int64) ([]provider.Topup, error) {
	recorded := 0
	observed, err := s.reconciler.ReconcileTopups(ctx, since, func(cardID string, amountCents int64, topupID string) error {
		err := s.store.RecordCredit(ctx, TopupCredit{
			TopupID:     topupID,
			CardID:      cardID,
			AmountCents: amountCents,
			RecordedAt:  time.Now().UTC(),
		})
		if err == nil {
			recorded++
		}
		return err
	})
	if err != nil {
		return observed, err
	}

	s.logger.Info("topup reconciliation complete",
		slog.Int("observed", len(observed)),
		slog.Int("recorded", recorded),
		slog.Int("skipped", len(observed)-recorded))

	return observed, nil
}
