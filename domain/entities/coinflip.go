package entities

import (
	"errors"
	"math"
	"time"
)

// CoinflipSettings is the operator configuration a coinflip game is created
// from: who holds the pot, how many players may join and how much of the pot
// the house keeps.
type CoinflipSettings struct {
	ID         string    `db:"id"`
	WalletID   string    `db:"wallet_id"`
	MaxPlayers int       `db:"max_players"`
	MaxBet     int64     `db:"max_bet"`
	Enabled    bool      `db:"enabled"`
	Haircut    float64   `db:"haircut"`
	CreatedAt  time.Time `db:"created_at"`
}

// Validate checks the operator-supplied settings.
func (s *CoinflipSettings) Validate() error {
	if s.MaxPlayers < 2 {
		return errors.New("max players must be at least 2")
	}
	if s.MaxBet <= 0 {
		return errors.New("max bet must be positive")
	}
	if s.Haircut < 0 || s.Haircut > 100 {
		return errors.New("haircut must be between 0 and 100")
	}
	return nil
}

// CoinflipGame is a pooled multiplayer wager. Players join by paying the
// buy-in; once NumberOfPlayers have joined, one uniformly-chosen player wins
// the pot minus the haircut. Players holds payout addresses in join order
// until completion, after which it holds only the winner. Duplicates are
// allowed: a player may buy in more than once.
type CoinflipGame struct {
	ID              string    `db:"id"`
	SettingsID      string    `db:"settings_id"`
	Name            string    `db:"name"`
	BuyIn           int64     `db:"buy_in"`
	NumberOfPlayers int       `db:"number_of_players"`
	Players         []string  `db:"players"`
	Completed       bool      `db:"completed"`
	CreatedAt       time.Time `db:"created_at"`
}

// IsFull reports whether the game has reached its target player count.
func (g *CoinflipGame) IsFull() bool {
	return len(g.Players) >= g.NumberOfPlayers
}

// Pot returns the total amount paid into the game at capacity.
func (g *CoinflipGame) Pot() int64 {
	return g.BuyIn * int64(g.NumberOfPlayers)
}

// WinnerPayout returns the pot minus the house haircut.
func (g *CoinflipGame) WinnerPayout(haircut float64) int64 {
	return haircutAmount(g.Pot(), haircut)
}

// RefundAmount returns what a late joiner gets back: the buy-in minus the
// house haircut.
func (g *CoinflipGame) RefundAmount(haircut float64) int64 {
	return haircutAmount(g.BuyIn, haircut)
}

func haircutAmount(amount int64, haircut float64) int64 {
	return int64(math.Floor(float64(amount) * (100 - haircut) / 100))
}
