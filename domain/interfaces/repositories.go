package interfaces

import (
	"context"

	"satsdice/domain/entities"
)

// DiceLinkRepository defines the interface for dice link data access.
// Getters return nil without error when no record exists.
type DiceLinkRepository interface {
	// Create persists a new dice link
	Create(ctx context.Context, link *entities.DiceLink) error

	// GetByID retrieves a dice link by its ID
	GetByID(ctx context.Context, id string) (*entities.DiceLink, error)

	// GetByWallet returns all dice links owned by a wallet
	GetByWallet(ctx context.Context, walletID string) ([]*entities.DiceLink, error)

	// Update replaces the stored link with the given record
	Update(ctx context.Context, link *entities.DiceLink) error

	// Delete removes a dice link
	Delete(ctx context.Context, id string) error

	// IncrementServed atomically bumps the lifetime counters when an
	// invoice is handed out. Invoice creation is not serialized per link,
	// so this cannot go through Update.
	IncrementServed(ctx context.Context, id string, amount int64) error
}

// DicePaymentRepository defines the interface for pending bet data access
type DicePaymentRepository interface {
	// Create records a new pending bet, keyed by payment hash
	Create(ctx context.Context, payment *entities.DicePayment) error

	// GetByHash retrieves a bet by its payment hash
	GetByHash(ctx context.Context, paymentHash string) (*entities.DicePayment, error)

	// Update replaces the stored bet with the given record
	Update(ctx context.Context, payment *entities.DicePayment) error

	// CountPendingByLink returns the number of unresolved bets that still
	// reference a link
	CountPendingByLink(ctx context.Context, linkID string) (int, error)
}

// WithdrawRepository defines the interface for withdraw credential data access
type WithdrawRepository interface {
	// Create persists a new withdraw credential
	Create(ctx context.Context, credential *entities.WithdrawCredential) error

	// GetByID retrieves a credential by its ID (payment hash or game ID)
	GetByID(ctx context.Context, id string) (*entities.WithdrawCredential, error)

	// GetByUniqueHash retrieves a credential by its secret hash
	GetByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error)

	// ClaimByUniqueHash atomically flips used from false to true and
	// returns the claimed credential. Returns nil when the credential does
	// not exist or was already used.
	ClaimByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error)

	// Release flips used back to false so the credential can be redeemed
	// again after a failed payout
	Release(ctx context.Context, id string) error
}

// CoinflipSettingsRepository defines the interface for coinflip settings access
type CoinflipSettingsRepository interface {
	// Create persists new coinflip settings
	Create(ctx context.Context, settings *entities.CoinflipSettings) error

	// GetByID retrieves settings by ID
	GetByID(ctx context.Context, id string) (*entities.CoinflipSettings, error)

	// Update replaces the stored settings with the given record
	Update(ctx context.Context, settings *entities.CoinflipSettings) error
}

// CoinflipGameRepository defines the interface for coinflip game access
type CoinflipGameRepository interface {
	// Create persists a new game
	Create(ctx context.Context, game *entities.CoinflipGame) error

	// GetByID retrieves a game by ID
	GetByID(ctx context.Context, id string) (*entities.CoinflipGame, error)

	// Update replaces the stored game with the given record
	Update(ctx context.Context, game *entities.CoinflipGame) error
}
