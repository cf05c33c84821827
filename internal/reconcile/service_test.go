package reconcile

import (
	"context"
	"testing"

	"github.com/paybridge/paybridge/internal/logging"
	"github.com/paybridge/paybridge/internal/provider"
)

type fakeReconciler struct {
	topups []provider.Topup
}

func (f *fakeReconciler) ReconcileTopups(_ context.Context, since int64, fn provider.TopupUpdateFunc) ([]provider.Topup, error) {
	var observed []provider.Topup
	for _, topup := range f.topups {
		if topup.Created < since {
			continue
		}
		observed = append(observed, topup)
		if topup.CardID == "" || fn == nil {
			continue
		}
		if err := fn(topup.CardID, topup.AmountCents, topup.ID); err != nil {
			return observed, err
		}
	}
	return observed, nil
}

func TestRunRecordsCreditsForCardTopups(t *testing.T) {
	reconciler := &fakeReconciler{topups: []provider.Topup{
		{ID: "tu_1", AmountCents: 1000, Currency: "USD", Status: "succeeded", Created: 1700000000, CardID: "vc_1"},
		{ID: "tu_2", AmountCents: 2000, Currency: "USD", Status: "succeeded", Created: 1700000100},
	}}
	store := NewMemoryStore()

	svc, err := NewService(reconciler, store, logging.Discard())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	observed, err := svc.Run(context.Background(), 1700000000)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(observed) != 2 {
		t.Fatalf("expected 2 observed topups, got %d", len(observed))
	}

	credits, err := store.ListCredits(context.Background(), "vc_1")
	if err != nil {
		t.Fatalf("list credits: %v", err)
	}
	if len(credits) != 1 {
		t.Fatalf("expected 1 credit, got %d", len(credits))
	}
	if credits[0].TopupID != "tu_1" || credits[0].AmountCents != 1000 {
		t.Fatalf("unexpected credit: %+v", credits[0])
	}
}

func TestRunIsIdempotentAcrossOverlappingWindows(t *testing.T) {
	reconciler := &fakeReconciler{topups: []provider.Topup{
		{ID: "tu_1", AmountCents: 1000, Created: 1700000000, CardID: "vc_1"},
	}}
	store := NewMemoryStore()
	svc, _ := NewService(reconciler, store, logging.Discard())

	for i := 0; i < 3; i++ {
		if _, err := svc.Run(context.Background(), 0); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	credits, _ := store.ListCredits(context.Background(), "vc_1")
	if len(credits) != 1 {
		t.Fatalf("expected a single credit after replays, got %d", len(credits))
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(nil, NewMemoryStore(), logging.Discard()); err == nil {
		t.Fatalf("expected error for nil reconciler")
	}
	if _, err := NewService(&fakeReconciler{}, nil, logging.Discard()); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
