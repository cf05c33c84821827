package reconcile

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists top-up credits in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// RecordCredit inserts a credit row. Replayed top-up ids are ignored so
// reconciliation runs can overlap safely.
func (s *PostgresStore) RecordCredit(ctx context.Context, credit TopupCredit) error {
	_, err := s.db.Exec(ctx, `INSERT INTO topup_credits (topup_id, card_id, amount_cents, recorded_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (topup_id) DO NOTHING`,
		credit.TopupID, credit.CardID, credit.AmountCents, credit.RecordedAt.UTC())
	return err
}

// ListCredits returns every credit recorded for the card.
func (s *PostgresStore) ListCredits(ctx context.Context, cardID string) ([]TopupCredit, error) {
	rows, err := s.db.Query(ctx, `SELECT topup_id, card_id, amount_cents, recorded_at
        FROM topup_credits WHERE card_id = $1 ORDER BY recorded_at`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []TopupCredit
	for rows.Next() {
		var credit TopupCredit
		var recordedAt time.Time
		if err := rows.Scan(&credit.TopupID, &credit.CardID, &credit.AmountCents, &recordedAt); err != nil {
			return nil, err
		}
		credit.RecordedAt = recordedAt.UTC()
		credits = append(credits, credit)
	}
	return credits, rows.Err()
}
