package repository

import (
	"context"
	"fmt"

	"satsdice/database"
	"satsdice/domain/entities"

	"github.com/jackc/pgx/v5"
)

// WithdrawRepository implements the WithdrawRepository interface
type WithdrawRepository struct {
	q queryable
}

// NewWithdrawRepository creates a new withdraw credential repository
func NewWithdrawRepository(db *database.DB) *WithdrawRepository {
	return &WithdrawRepository{q: db.Pool}
}

// Create persists a new withdraw credential
func (r *WithdrawRepository) Create(ctx context.Context, credential *entities.WithdrawCredential) error {
	query := `
		INSERT INTO withdraw_credentials (id, wallet_id, value, unique_hash, k1, used)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		credential.ID,
		credential.WalletID,
		credential.Value,
		credential.UniqueHash,
		credential.K1,
		credential.Used,
	).Scan(&credential.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create withdraw credential %s: %w", credential.ID, err)
	}

	return nil
}

// GetByID retrieves a credential by its ID
func (r *WithdrawRepository) GetByID(ctx context.Context, id string) (*entities.WithdrawCredential, error) {
	query := `
		SELECT id, wallet_id, value, unique_hash, k1, used, created_at
		FROM withdraw_credentials
		WHERE id = $1
	`

	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByUniqueHash retrieves a credential by its secret hash
func (r *WithdrawRepository) GetByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error) {
	query := `
		SELECT id, wallet_id, value, unique_hash, k1, used, created_at
		FROM withdraw_credentials
		WHERE unique_hash = $1
	`

	return r.scanOne(r.q.QueryRow(ctx, query, uniqueHash))
}

// ClaimByUniqueHash atomically flips used from false to true. The conditional
// update is the linearization point for redemption: concurrent claims on the
// same credential see exactly one row affected.
func (r *WithdrawRepository) ClaimByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error) {
	query := `
		UPDATE withdraw_credentials
		SET used = TRUE
		WHERE unique_hash = $1 AND used = FALSE
		RETURNING id, wallet_id, value, unique_hash, k1, used, created_at
	`

	return r.scanOne(r.q.QueryRow(ctx, query, uniqueHash))
}

// Release flips used back to false after a failed payout
func (r *WithdrawRepository) Release(ctx context.Context, id string) error {
	query := `
		UPDATE withdraw_credentials
		SET used = FALSE
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to release withdraw credential %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("withdraw credential %s not found", id)
	}

	return nil
}

func (r *WithdrawRepository) scanOne(row pgx.Row) (*entities.WithdrawCredential, error) {
	var credential entities.WithdrawCredential
	err := row.Scan(
		&credential.ID,
		&credential.WalletID,
		&credential.Value,
		&credential.UniqueHash,
		&credential.K1,
		&credential.Used,
		&credential.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdraw credential: %w", err)
	}

	return &credential, nil
}
