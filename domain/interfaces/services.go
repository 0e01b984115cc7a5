package interfaces

import (
	"context"
	"errors"

	"satsdice/domain/entities"
	"satsdice/domain/events"
)

var (
	// ErrPaymentFailed means the payment service definitively rejected the
	// outbound payment. The liability is still recorded and a retry is safe.
	ErrPaymentFailed = errors.New("outbound payment failed")

	// ErrPaymentUnknown means the outbound payment ended in an ambiguous
	// state (e.g. a timeout). It may have succeeded, so the payout must be
	// reconciled before it can be retried.
	ErrPaymentUnknown = errors.New("outbound payment status unknown")

	// ErrCredentialUsed is returned when a redemption starts on a
	// credential that was already claimed.
	ErrCredentialUsed = errors.New("withdraw credential already used")

	// ErrCredentialNotFound is returned when no credential matches the
	// given secret.
	ErrCredentialNotFound = errors.New("withdraw credential not found")
)

// Settlement tags and extra-metadata keys carried on inbound invoices. The
// confirmed-payment event echoes them back so the dispatcher can route the
// settlement to the right handler.
const (
	TagDice     = "wager_dice"
	TagCoinflip = "wager_coinflip"

	ExtraKeyTag     = "tag"
	ExtraKeyLink    = "link"
	ExtraKeyGame    = "game"
	ExtraKeyAddress = "ln_address"
)

// Invoice is an inbound Lightning invoice handed out to a player.
type Invoice struct {
	PaymentHash string
	Bolt11      string
}

// CreateInvoiceParams describes an inbound invoice request to the payment
// service. Extra carries the settlement tag and handler metadata that come
// back on the confirmed-payment event.
type CreateInvoiceParams struct {
	WalletID string
	Amount   int64
	Memo     string
	Extra    map[string]string
}

// PaymentClient is the external Lightning payment service.
type PaymentClient interface {
	// CreateInvoice creates an inbound invoice for the given amount in sats
	CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error)

	// PayInvoice pays an outbound invoice from the given wallet, capped at
	// maxSat. Returns ErrPaymentFailed or ErrPaymentUnknown (possibly
	// wrapped) on failure.
	PayInvoice(ctx context.Context, walletID, bolt11 string, maxSat int64) error

	// PaymentSucceeded reports whether an inbound payment actually settled
	PaymentSucceeded(ctx context.Context, paymentHash string) (bool, error)
}

// AddressResolver turns a human-readable payout address into a payable
// invoice for a target amount.
type AddressResolver interface {
	ResolveInvoice(ctx context.Context, lnAddress string, amountSat int64) (string, error)
}

// EventPublisher publishes player-facing notifications and operational events
type EventPublisher interface {
	Publish(event events.Event) error
}

// DiceService manages dice links and settles dice bets
type DiceService interface {
	// CreateLink validates and persists a new dice link
	CreateLink(ctx context.Context, link *entities.DiceLink) (*entities.DiceLink, error)

	// GetLink retrieves a dice link by ID
	GetLink(ctx context.Context, id string) (*entities.DiceLink, error)

	// ListLinks returns all dice links owned by a wallet
	ListLinks(ctx context.Context, walletID string) ([]*entities.DiceLink, error)

	// UpdateLink applies an operator update to an existing link
	UpdateLink(ctx context.Context, id string, update entities.UpdateDiceLink) (*entities.DiceLink, error)

	// DeleteLink removes a dice link
	DeleteLink(ctx context.Context, id string) error

	// CreateBetInvoice validates the amount against the link's bet band,
	// creates a tagged inbound invoice and records the pending bet.
	// amountMsat is in millisatoshi as received from the LNURL callback.
	CreateBetInvoice(ctx context.Context, linkID string, amountMsat int64) (*Invoice, error)

	// ResolvePayment settles a confirmed bet exactly once. Re-invocations
	// for an already resolved payment hash return the stored outcome.
	ResolvePayment(ctx context.Context, paymentHash string) (*entities.DicePayment, error)

	// GetOutcome returns the bet, its link and the payout credential if one
	// was issued
	GetOutcome(ctx context.Context, paymentHash string) (*entities.DiceOutcome, error)
}

// CoinflipService manages pooled coinflip games
type CoinflipService interface {
	// CreateSettings validates and persists operator settings
	CreateSettings(ctx context.Context, settings *entities.CoinflipSettings) (*entities.CoinflipSettings, error)

	// GetSettings retrieves settings by ID
	GetSettings(ctx context.Context, id string) (*entities.CoinflipSettings, error)

	// UpdateSettings replaces existing settings after validation
	UpdateSettings(ctx context.Context, settings *entities.CoinflipSettings) (*entities.CoinflipSettings, error)

	// CreateGame opens a new game from the given settings
	CreateGame(ctx context.Context, settingsID, name string, buyIn int64, numberOfPlayers int) (*entities.CoinflipGame, error)

	// GetGame retrieves a game by ID
	GetGame(ctx context.Context, id string) (*entities.CoinflipGame, error)

	// CreateJoinInvoice creates a tagged buy-in invoice for a player
	CreateJoinInvoice(ctx context.Context, gameID, lnAddress string) (*Invoice, error)

	// Join settles a confirmed buy-in: appends the player, completes the
	// game when it fills, or refunds a late joiner. amount is in sats.
	Join(ctx context.Context, gameID, paymentHash, lnAddress string, amount int64) error

	// PayWinner pays out a completed game's winner. Safe to retry after a
	// payout failure; a no-op once the payout credential is spent.
	PayWinner(ctx context.Context, gameID string) error
}

// WithdrawService issues and redeems one-time withdraw credentials
type WithdrawService interface {
	// Issue creates a credential for the given key, or returns the
	// existing one unchanged
	Issue(ctx context.Context, id, walletID string, value int64) (*entities.WithdrawCredential, error)

	// Get looks up a credential by its payout key
	Get(ctx context.Context, id string) (*entities.WithdrawCredential, error)

	// GetByUniqueHash looks up a credential by its secret hash
	GetByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error)

	// BeginRedeem atomically claims the credential. Returns
	// ErrCredentialUsed or ErrCredentialNotFound.
	BeginRedeem(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error)

	// CompleteRedeem finalizes a successful redemption
	CompleteRedeem(ctx context.Context, credential *entities.WithdrawCredential) error

	// RollbackRedeem releases a claimed credential after a failed payout
	RollbackRedeem(ctx context.Context, id string) error

	// Redeem claims the credential and pays the given invoice, rolling the
	// claim back if the payment service reports a definite failure
	Redeem(ctx context.Context, uniqueHash, bolt11 string) error
}
