package entities

import "time"

// Outcome represents the resolution state of a dice payment.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
)

// DicePayment records a single inbound bet payment against a dice link.
// It is keyed by the Lightning payment hash and transitions from pending
// to won or lost exactly once.
type DicePayment struct {
	PaymentHash string    `db:"payment_hash"`
	LinkID      string    `db:"link_id"`
	Value       int64     `db:"value"`
	Outcome     Outcome   `db:"outcome"`
	CreatedAt   time.Time `db:"created_at"`
}

// IsResolved reports whether the payment has reached a terminal outcome.
func (p *DicePayment) IsResolved() bool {
	return p.Outcome == OutcomeWon || p.Outcome == OutcomeLost
}

// DiceOutcome combines a resolved bet with its link configuration and, for a
// won bet, the payout credential.
type DiceOutcome struct {
	Payment    *DicePayment
	Link       *DiceLink
	Credential *WithdrawCredential
}
