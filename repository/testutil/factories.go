package testutil

import (
	"satsdice/domain/entities"

	"github.com/google/uuid"
)

// CreateTestDiceLink creates a dice link with default values
func CreateTestDiceLink(walletID string) *entities.DiceLink {
	return &entities.DiceLink{
		ID:         uuid.NewString(),
		WalletID:   walletID,
		Title:      "test link",
		MinBet:     10,
		MaxBet:     1000,
		Chance:     50,
		Multiplier: 2,
	}
}

// CreateTestDicePayment creates a pending bet against the given link
func CreateTestDicePayment(linkID string, value int64) *entities.DicePayment {
	return &entities.DicePayment{
		PaymentHash: uuid.NewString(),
		LinkID:      linkID,
		Value:       value,
		Outcome:     entities.OutcomePending,
	}
}

// CreateTestWithdrawCredential creates an unused credential
func CreateTestWithdrawCredential(id, walletID string, value int64) *entities.WithdrawCredential {
	return &entities.WithdrawCredential{
		ID:         id,
		WalletID:   walletID,
		Value:      value,
		UniqueHash: uuid.NewString(),
		K1:         uuid.NewString(),
	}
}

// CreateTestCoinflipSettings creates enabled settings with default values
func CreateTestCoinflipSettings(walletID string) *entities.CoinflipSettings {
	return &entities.CoinflipSettings{
		ID:         uuid.NewString(),
		WalletID:   walletID,
		MaxPlayers: 10,
		MaxBet:     10000,
		Enabled:    true,
		Haircut:    10,
	}
}

// CreateTestCoinflipGame creates an open game under the given settings
func CreateTestCoinflipGame(settingsID string, buyIn int64, numberOfPlayers int) *entities.CoinflipGame {
	return &entities.CoinflipGame{
		ID:              uuid.NewString(),
		SettingsID:      settingsID,
		Name:            "test game",
		BuyIn:           buyIn,
		NumberOfPlayers: numberOfPlayers,
		Players:         []string{},
	}
}
