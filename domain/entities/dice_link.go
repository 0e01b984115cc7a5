package entities

import (
	"errors"
	"math"
	"time"
)

// DiceLink represents an operator-configured dice game: a pay link with a win
// chance and a payout multiplier. Players pay an amount between MinBet and
// MaxBet and win floor(amount * Multiplier) with probability Chance percent.
type DiceLink struct {
	ID             string    `db:"id"`
	WalletID       string    `db:"wallet_id"`
	Title          string    `db:"title"`
	MinBet         int64     `db:"min_bet"`
	MaxBet         int64     `db:"max_bet"`
	Chance         float64   `db:"chance"`
	Multiplier     float64   `db:"multiplier"`
	Haircut        float64   `db:"haircut"`
	TotalAmount    int64     `db:"total_amount"`
	ServedInvoices int64     `db:"served_invoices"`
	CreatedAt      time.Time `db:"created_at"`
}

// UpdateDiceLink holds the fields an operator may change on an existing link.
// The set of mutable fields is fixed; counters are never updated through here.
type UpdateDiceLink struct {
	Title      string
	MinBet     int64
	MaxBet     int64
	Chance     float64
	Multiplier float64
	Haircut    float64
}

// Validate checks the operator-supplied configuration.
func (l *DiceLink) Validate() error {
	if l.MinBet <= 0 {
		return errors.New("min bet must be positive")
	}
	if l.MinBet > l.MaxBet {
		return errors.New("min bet cannot exceed max bet")
	}
	if l.Chance < 0 || l.Chance > 100 {
		return errors.New("chance must be between 0 and 100")
	}
	if l.Multiplier <= 0 {
		return errors.New("multiplier must be positive")
	}
	if l.Haircut < 0 || l.Haircut > 100 {
		return errors.New("haircut must be between 0 and 100")
	}
	return nil
}

// Apply copies the mutable fields of an update onto the link.
func (l *DiceLink) Apply(update UpdateDiceLink) {
	l.Title = update.Title
	l.MinBet = update.MinBet
	l.MaxBet = update.MaxBet
	l.Chance = update.Chance
	l.Multiplier = update.Multiplier
	l.Haircut = update.Haircut
}

// WinAmount returns the payout for a winning bet of the given value.
func (l *DiceLink) WinAmount(value int64) int64 {
	return int64(math.Floor(float64(value) * l.Multiplier))
}

// AcceptsAmount checks whether a bet value falls inside the configured band.
func (l *DiceLink) AcceptsAmount(value int64) bool {
	return value >= l.MinBet && value <= l.MaxBet
}
