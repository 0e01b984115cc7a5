package repository

import (
	"context"
	"fmt"

	"satsdice/database"
	"satsdice/domain/entities"

	"github.com/jackc/pgx/v5"
)

// CoinflipGameRepository implements the CoinflipGameRepository interface
type CoinflipGameRepository struct {
	q queryable
}

// NewCoinflipGameRepository creates a new coinflip game repository
func NewCoinflipGameRepository(db *database.DB) *CoinflipGameRepository {
	return &CoinflipGameRepository{q: db.Pool}
}

// Create persists a new game
func (r *CoinflipGameRepository) Create(ctx context.Context, game *entities.CoinflipGame) error {
	query := `
		INSERT INTO coinflip_games (id, settings_id, name, buy_in, number_of_players, players, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		game.ID,
		game.SettingsID,
		game.Name,
		game.BuyIn,
		game.NumberOfPlayers,
		game.Players,
		game.Completed,
	).Scan(&game.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create coinflip game %s: %w", game.ID, err)
	}

	return nil
}

// GetByID retrieves a game by ID
func (r *CoinflipGameRepository) GetByID(ctx context.Context, id string) (*entities.CoinflipGame, error) {
	query := `
		SELECT id, settings_id, name, buy_in, number_of_players, players, completed, created_at
		FROM coinflip_games
		WHERE id = $1
	`

	var game entities.CoinflipGame
	err := r.q.QueryRow(ctx, query, id).Scan(
		&game.ID,
		&game.SettingsID,
		&game.Name,
		&game.BuyIn,
		&game.NumberOfPlayers,
		&game.Players,
		&game.Completed,
		&game.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coinflip game %s: %w", id, err)
	}

	return &game, nil
}

// Update replaces the stored game's player list and completion flag
func (r *CoinflipGameRepository) Update(ctx context.Context, game *entities.CoinflipGame) error {
	query := `
		UPDATE coinflip_games
		SET players = $1, completed = $2
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, game.Players, game.Completed, game.ID)
	if err != nil {
		return fmt.Errorf("failed to update coinflip game %s: %w", game.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("coinflip game %s not found", game.ID)
	}

	return nil
}
