package repository

import (
	"context"
	"fmt"

	"satsdice/database"
	"satsdice/domain/entities"

	"github.com/jackc/pgx/v5"
)

// CoinflipSettingsRepository implements the CoinflipSettingsRepository interface
type CoinflipSettingsRepository struct {
	q queryable
}

// NewCoinflipSettingsRepository creates a new coinflip settings repository
func NewCoinflipSettingsRepository(db *database.DB) *CoinflipSettingsRepository {
	return &CoinflipSettingsRepository{q: db.Pool}
}

// Create persists new coinflip settings
func (r *CoinflipSettingsRepository) Create(ctx context.Context, settings *entities.CoinflipSettings) error {
	query := `
		INSERT INTO coinflip_settings (id, wallet_id, max_players, max_bet, enabled, haircut)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		settings.ID,
		settings.WalletID,
		settings.MaxPlayers,
		settings.MaxBet,
		settings.Enabled,
		settings.Haircut,
	).Scan(&settings.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create coinflip settings %s: %w", settings.ID, err)
	}

	return nil
}

// GetByID retrieves settings by ID
func (r *CoinflipSettingsRepository) GetByID(ctx context.Context, id string) (*entities.CoinflipSettings, error) {
	query := `
		SELECT id, wallet_id, max_players, max_bet, enabled, haircut, created_at
		FROM coinflip_settings
		WHERE id = $1
	`

	var settings entities.CoinflipSettings
	err := r.q.QueryRow(ctx, query, id).Scan(
		&settings.ID,
		&settings.WalletID,
		&settings.MaxPlayers,
		&settings.MaxBet,
		&settings.Enabled,
		&settings.Haircut,
		&settings.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coinflip settings %s: %w", id, err)
	}

	return &settings, nil
}

// Update replaces the stored settings with the given record
func (r *CoinflipSettingsRepository) Update(ctx context.Context, settings *entities.CoinflipSettings) error {
	query := `
		UPDATE coinflip_settings
		SET wallet_id = $1, max_players = $2, max_bet = $3, enabled = $4, haircut = $5
		WHERE id = $6
	`

	result, err := r.q.Exec(ctx, query,
		settings.WalletID,
		settings.MaxPlayers,
		settings.MaxBet,
		settings.Enabled,
		settings.Haircut,
		settings.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update coinflip settings %s: %w", settings.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("coinflip settings %s not found", settings.ID)
	}

	return nil
}
