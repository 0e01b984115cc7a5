package testhelpers

import (
	"context"

	"satsdice/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockDiceLinkRepository is a mock implementation of DiceLinkRepository
type MockDiceLinkRepository struct {
	mock.Mock
}

func (m *MockDiceLinkRepository) Create(ctx context.Context, link *entities.DiceLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockDiceLinkRepository) GetByID(ctx context.Context, id string) (*entities.DiceLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DiceLink), args.Error(1)
}

func (m *MockDiceLinkRepository) GetByWallet(ctx context.Context, walletID string) ([]*entities.DiceLink, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DiceLink), args.Error(1)
}

func (m *MockDiceLinkRepository) Update(ctx context.Context, link *entities.DiceLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockDiceLinkRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDiceLinkRepository) IncrementServed(ctx context.Context, id string, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockDicePaymentRepository is a mock implementation of DicePaymentRepository
type MockDicePaymentRepository struct {
	mock.Mock
}

func (m *MockDicePaymentRepository) Create(ctx context.Context, payment *entities.DicePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockDicePaymentRepository) GetByHash(ctx context.Context, paymentHash string) (*entities.DicePayment, error) {
	args := m.Called(ctx, paymentHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DicePayment), args.Error(1)
}

func (m *MockDicePaymentRepository) Update(ctx context.Context, payment *entities.DicePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockDicePaymentRepository) CountPendingByLink(ctx context.Context, linkID string) (int, error) {
	args := m.Called(ctx, linkID)
	return args.Int(0), args.Error(1)
}

// MockWithdrawRepository is a mock implementation of WithdrawRepository
type MockWithdrawRepository struct {
	mock.Mock
}

func (m *MockWithdrawRepository) Create(ctx context.Context, credential *entities.WithdrawCredential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *MockWithdrawRepository) GetByID(ctx context.Context, id string) (*entities.WithdrawCredential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawCredential), args.Error(1)
}

func (m *MockWithdrawRepository) GetByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error) {
	args := m.Called(ctx, uniqueHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawCredential), args.Error(1)
}

func (m *MockWithdrawRepository) ClaimByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error) {
	args := m.Called(ctx, uniqueHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawCredential), args.Error(1)
}

func (m *MockWithdrawRepository) Release(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCoinflipSettingsRepository is a mock implementation of CoinflipSettingsRepository
type MockCoinflipSettingsRepository struct {
	mock.Mock
}

func (m *MockCoinflipSettingsRepository) Create(ctx context.Context, settings *entities.CoinflipSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockCoinflipSettingsRepository) GetByID(ctx context.Context, id string) (*entities.CoinflipSettings, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CoinflipSettings), args.Error(1)
}

func (m *MockCoinflipSettingsRepository) Update(ctx context.Context, settings *entities.CoinflipSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockCoinflipGameRepository is a mock implementation of CoinflipGameRepository
type MockCoinflipGameRepository struct {
	mock.Mock
}

func (m *MockCoinflipGameRepository) Create(ctx context.Context, game *entities.CoinflipGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockCoinflipGameRepository) GetByID(ctx context.Context, id string) (*entities.CoinflipGame, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CoinflipGame), args.Error(1)
}

func (m *MockCoinflipGameRepository) Update(ctx context.Context, game *entities.CoinflipGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}
