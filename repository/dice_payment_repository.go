package repository

import (
	"context"
	"fmt"

	"satsdice/database"
	"satsdice/domain/entities"

	"github.com/jackc/pgx/v5"
)

// DicePaymentRepository implements the DicePaymentRepository interface
type DicePaymentRepository struct {
	q queryable
}

// NewDicePaymentRepository creates a new dice payment repository
func NewDicePaymentRepository(db *database.DB) *DicePaymentRepository {
	return &DicePaymentRepository{q: db.Pool}
}

// Create records a new pending bet, keyed by payment hash
func (r *DicePaymentRepository) Create(ctx context.Context, payment *entities.DicePayment) error {
	query := `
		INSERT INTO dice_payments (payment_hash, link_id, value, outcome)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		payment.PaymentHash,
		payment.LinkID,
		payment.Value,
		payment.Outcome,
	).Scan(&payment.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create dice payment %s: %w", payment.PaymentHash, err)
	}

	return nil
}

// GetByHash retrieves a bet by its payment hash
func (r *DicePaymentRepository) GetByHash(ctx context.Context, paymentHash string) (*entities.DicePayment, error) {
	query := `
		SELECT payment_hash, link_id, value, outcome, created_at
		FROM dice_payments
		WHERE payment_hash = $1
	`

	var payment entities.DicePayment
	err := r.q.QueryRow(ctx, query, paymentHash).Scan(
		&payment.PaymentHash,
		&payment.LinkID,
		&payment.Value,
		&payment.Outcome,
		&payment.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dice payment %s: %w", paymentHash, err)
	}

	return &payment, nil
}

// Update replaces the stored bet's outcome
func (r *DicePaymentRepository) Update(ctx context.Context, payment *entities.DicePayment) error {
	query := `
		UPDATE dice_payments
		SET outcome = $1
		WHERE payment_hash = $2
	`

	result, err := r.q.Exec(ctx, query, payment.Outcome, payment.PaymentHash)
	if err != nil {
		return fmt.Errorf("failed to update dice payment %s: %w", payment.PaymentHash, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("dice payment %s not found", payment.PaymentHash)
	}

	return nil
}

// CountPendingByLink returns the number of unresolved bets that still
// reference a link
func (r *DicePaymentRepository) CountPendingByLink(ctx context.Context, linkID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM dice_payments
		WHERE link_id = $1 AND outcome = $2
	`

	var count int
	err := r.q.QueryRow(ctx, query, linkID, entities.OutcomePending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending bets for link %s: %w", linkID, err)
	}

	return count, nil
}
