package entities

import "time"

// WithdrawCredential is a one-time secret entitling the bearer to pull a
// specific payout amount exactly once. For dice payouts the ID is the
// originating payment hash; for coinflip winner payouts it is the game ID.
// Used flips to true when a redemption starts and is rolled back to false
// only when the outbound payment explicitly failed.
type WithdrawCredential struct {
	ID         string    `db:"id"`
	WalletID   string    `db:"wallet_id"`
	Value      int64     `db:"value"`
	UniqueHash string    `db:"unique_hash"`
	K1         string    `db:"k1"`
	Used       bool      `db:"used"`
	CreatedAt  time.Time `db:"created_at"`
}
