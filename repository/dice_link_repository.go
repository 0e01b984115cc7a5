package repository

import (
	"context"
	"fmt"

	"satsdice/database"
	"satsdice/domain/entities"

	"github.com/jackc/pgx/v5"
)

// DiceLinkRepository implements the DiceLinkRepository interface
type DiceLinkRepository struct {
	q queryable
}

// NewDiceLinkRepository creates a new dice link repository
func NewDiceLinkRepository(db *database.DB) *DiceLinkRepository {
	return &DiceLinkRepository{q: db.Pool}
}

// Create persists a new dice link
func (r *DiceLinkRepository) Create(ctx context.Context, link *entities.DiceLink) error {
	query := `
		INSERT INTO dice_links (id, wallet_id, title, min_bet, max_bet, chance, multiplier, haircut)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		link.ID,
		link.WalletID,
		link.Title,
		link.MinBet,
		link.MaxBet,
		link.Chance,
		link.Multiplier,
		link.Haircut,
	).Scan(&link.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create dice link %s: %w", link.ID, err)
	}

	return nil
}

// GetByID retrieves a dice link by its ID
func (r *DiceLinkRepository) GetByID(ctx context.Context, id string) (*entities.DiceLink, error) {
	query := `
		SELECT id, wallet_id, title, min_bet, max_bet, chance, multiplier, haircut,
		       total_amount, served_invoices, created_at
		FROM dice_links
		WHERE id = $1
	`

	var link entities.DiceLink
	err := r.q.QueryRow(ctx, query, id).Scan(
		&link.ID,
		&link.WalletID,
		&link.Title,
		&link.MinBet,
		&link.MaxBet,
		&link.Chance,
		&link.Multiplier,
		&link.Haircut,
		&link.TotalAmount,
		&link.ServedInvoices,
		&link.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dice link %s: %w", id, err)
	}

	return &link, nil
}

// GetByWallet returns all dice links owned by a wallet
func (r *DiceLinkRepository) GetByWallet(ctx context.Context, walletID string) ([]*entities.DiceLink, error) {
	query := `
		SELECT id, wallet_id, title, min_bet, max_bet, chance, multiplier, haircut,
		       total_amount, served_invoices, created_at
		FROM dice_links
		WHERE wallet_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dice links for wallet %s: %w", walletID, err)
	}
	defer rows.Close()

	var links []*entities.DiceLink
	for rows.Next() {
		var link entities.DiceLink
		err := rows.Scan(
			&link.ID,
			&link.WalletID,
			&link.Title,
			&link.MinBet,
			&link.MaxBet,
			&link.Chance,
			&link.Multiplier,
			&link.Haircut,
			&link.TotalAmount,
			&link.ServedInvoices,
			&link.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dice link: %w", err)
		}
		links = append(links, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dice links: %w", err)
	}

	return links, nil
}

// Update replaces the stored link's operator-editable fields
func (r *DiceLinkRepository) Update(ctx context.Context, link *entities.DiceLink) error {
	query := `
		UPDATE dice_links
		SET title = $1, min_bet = $2, max_bet = $3, chance = $4, multiplier = $5, haircut = $6
		WHERE id = $7
	`

	result, err := r.q.Exec(ctx, query,
		link.Title,
		link.MinBet,
		link.MaxBet,
		link.Chance,
		link.Multiplier,
		link.Haircut,
		link.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dice link %s: %w", link.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("dice link %s not found", link.ID)
	}

	return nil
}

// Delete removes a dice link
func (r *DiceLinkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.Exec(ctx, `DELETE FROM dice_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dice link %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("dice link %s not found", id)
	}

	return nil
}

// IncrementServed atomically bumps the lifetime counters when an invoice is
// handed out. Invoice creation runs concurrently per link, so this never goes
// through Update.
func (r *DiceLinkRepository) IncrementServed(ctx context.Context, id string, amount int64) error {
	query := `
		UPDATE dice_links
		SET served_invoices = served_invoices + 1, total_amount = total_amount + $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to increment counters for dice link %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("dice link %s not found", id)
	}

	return nil
}
