package testhelpers

import (
	"context"

	"satsdice/domain/entities"
	"satsdice/domain/events"
	"satsdice/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockPaymentClient is a mock implementation of PaymentClient
type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) CreateInvoice(ctx context.Context, params interfaces.CreateInvoiceParams) (*interfaces.Invoice, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Invoice), args.Error(1)
}

func (m *MockPaymentClient) PayInvoice(ctx context.Context, walletID, bolt11 string, maxSat int64) error {
	args := m.Called(ctx, walletID, bolt11, maxSat)
	return args.Error(0)
}

func (m *MockPaymentClient) PaymentSucceeded(ctx context.Context, paymentHash string) (bool, error) {
	args := m.Called(ctx, paymentHash)
	return args.Bool(0), args.Error(1)
}

// MockAddressResolver is a mock implementation of AddressResolver
type MockAddressResolver struct {
	mock.Mock
}

func (m *MockAddressResolver) ResolveInvoice(ctx context.Context, lnAddress string, amountSat int64) (string, error) {
	args := m.Called(ctx, lnAddress, amountSat)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockWithdrawService is a mock implementation of WithdrawService
type MockWithdrawService struct {
	mock.Mock
}

func (m *MockWithdrawService) Issue(ctx context.Context, id, walletID string, value int64) (*entities.WithdrawCredential, error) {
	args := m.Called(ctx, id, walletID, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawCredential), args.Error(1)
}

func (m *MockWithdrawService) Get(ctx context.Context, id string) (*entities.WithdrawCredential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawCredential), args.Error(1)
}

func (m *MockWithdrawService) GetByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error) {
	args := m.Called(ctx, uniqueHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawCredential), args.Error(1)
}

func (m *MockWithdrawService) BeginRedeem(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error) {
	args := m.Called(ctx, uniqueHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawCredential), args.Error(1)
}

func (m *MockWithdrawService) CompleteRedeem(ctx context.Context, credential *entities.WithdrawCredential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *MockWithdrawService) RollbackRedeem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWithdrawService) Redeem(ctx context.Context, uniqueHash, bolt11 string) error {
	args := m.Called(ctx, uniqueHash, bolt11)
	return args.Error(0)
}
