package services

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"satsdice/domain/entities"
	"satsdice/domain/interfaces"
	"satsdice/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same draw, so tests can force outcomes.
type fixedRand struct {
	n int
}

func (r fixedRand) Intn(n int) int {
	return r.n
}

func testLink() *entities.DiceLink {
	return &entities.DiceLink{
		ID:         "link-1",
		WalletID:   "wallet-1",
		Title:      "Test dice",
		MinBet:     10,
		MaxBet:     1000,
		Chance:     50,
		Multiplier: 2,
	}
}

func TestDiceService_ResolvePayment_Win(t *testing.T) {
	ctx := context.Background()

	mockLinkRepo := new(testhelpers.MockDiceLinkRepository)
	mockPaymentRepo := new(testhelpers.MockDicePaymentRepository)
	mockWithdraws := new(testhelpers.MockWithdrawService)
	mockPayments := new(testhelpers.MockPaymentClient)
	mockPublisher := new(testhelpers.MockEventPublisher)

	// Draw 30 against a 50% chance resolves as a win.
	service := NewDiceService(mockLinkRepo, mockPaymentRepo, mockWithdraws, mockPayments, mockPublisher, fixedRand{n: 30})

	pending := &entities.DicePayment{
		PaymentHash: "hash-1",
		LinkID:      "link-1",
		Value:       100,
		Outcome:     entities.OutcomePending,
	}

	mockPaymentRepo.On("GetByHash", ctx, "hash-1").Return(pending, nil)
	mockLinkRepo.On("GetByID", ctx, "link-1").Return(testLink(), nil)
	mockPayments.On("PaymentSucceeded", ctx, "hash-1").Return(true, nil)
	mockPaymentRepo.On("Update", ctx, mock.MatchedBy(func(p *entities.DicePayment) bool {
		return p.PaymentHash == "hash-1" && p.Outcome == entities.OutcomeWon
	})).Return(nil)
	mockWithdraws.On("Issue", ctx, "hash-1", "wallet-1", int64(200)).Return(&entities.WithdrawCredential{
		ID:       "hash-1",
		WalletID: "wallet-1",
		Value:    200,
	}, nil)
	mockPublisher.On("Publish", mock.AnythingOfType("events.DiceResolvedEvent")).Return(nil)

	payment, err := service.ResolvePayment(ctx, "hash-1")

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeWon, payment.Outcome)

	mockPaymentRepo.AssertExpectations(t)
	mockWithdraws.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestDiceService_ResolvePayment_Loss(t *testing.T) {
	ctx := context.Background()

	mockLinkRepo := new(testhelpers.MockDiceLinkRepository)
	mockPaymentRepo := new(testhelpers.MockDicePaymentRepository)
	mockWithdraws := new(testhelpers.MockWithdrawService)
	mockPayments := new(testhelpers.MockPaymentClient)
	mockPublisher := new(testhelpers.MockEventPublisher)

	// Draw 70 against a 50% chance resolves as a loss.
	service := NewDiceService(mockLinkRepo, mockPaymentRepo, mockWithdraws, mockPayments, mockPublisher, fixedRand{n: 70})

	pending := &entities.DicePayment{
		PaymentHash: "hash-1",
		LinkID:      "link-1",
		Value:       100,
		Outcome:     entities.OutcomePending,
	}

	mockPaymentRepo.On("GetByHash", ctx, "hash-1").Return(pending, nil)
	mockLinkRepo.On("GetByID", ctx, "link-1").Return(testLink(), nil)
	mockPayments.On("PaymentSucceeded", ctx, "hash-1").Return(true, nil)
	mockPaymentRepo.On("Update", ctx, mock.MatchedBy(func(p *entities.DicePayment) bool {
		return p.Outcome == entities.OutcomeLost
	})).Return(nil)
	mockPublisher.On("Publish", mock.AnythingOfType("events.DiceResolvedEvent")).Return(nil)

	payment, err := service.ResolvePayment(ctx, "hash-1")

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeLost, payment.Outcome)

	// No credential for a lost bet.
	mockWithdraws.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockPaymentRepo.AssertExpectations(t)
}

func TestDiceService_ResolvePayment_UnsettledPaymentLoses(t *testing.T) {
	ctx := context.Background()

	mockLinkRepo := new(testhelpers.MockDiceLinkRepository)
	mockPaymentRepo := new(testhelpers.MockDicePaymentRepository)
	mockWithdraws := new(testhelpers.MockWithdrawService)
	mockPayments := new(testhelpers.MockPaymentClient)
	mockPublisher := new(testhelpers.MockEventPublisher)

	// A winning draw still loses when the inbound payment never settled.
	service := NewDiceService(mockLinkRepo, mockPaymentRepo, mockWithdraws, mockPayments, mockPublisher, fixedRand{n: 0})

	pending := &entities.DicePayment{
		PaymentHash: "hash-1",
		LinkID:      "link-1",
		Value:       100,
		Outcome:     entities.OutcomePending,
	}

	mockPaymentRepo.On("GetByHash", ctx, "hash-1").Return(pending, nil)
	mockLinkRepo.On("GetByID", ctx, "link-1").Return(testLink(), nil)
	mockPayments.On("PaymentSucceeded", ctx, "hash-1").Return(false, nil)
	mockPaymentRepo.On("Update", ctx, mock.MatchedBy(func(p *entities.DicePayment) bool {
		return p.Outcome == entities.OutcomeLost
	})).Return(nil)
	mockPublisher.On("Publish", mock.AnythingOfType("events.DiceResolvedEvent")).Return(nil)

	payment, err := service.ResolvePayment(ctx, "hash-1")

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeLost, payment.Outcome)
	mockWithdraws.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDiceService_ResolvePayment_DuplicateIsNoOp(t *testing.T) {
	ctx := context.Background()

	mockLinkRepo := new(testhelpers.MockDiceLinkRepository)
	mockPaymentRepo := new(testhelpers.MockDicePaymentRepository)
	mockWithdraws := new(testhelpers.MockWithdrawService)
	mockPayments := new(testhelpers.MockPaymentClient)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewDiceService(mockLinkRepo, mockPaymentRepo, mockWithdraws, mockPayments, mockPublisher, fixedRand{n: 0})

	resolved := &entities.DicePayment{
		PaymentHash: "hash-1",
		LinkID:      "link-1",
		Value:       100,
		Outcome:     entities.OutcomeWon,
	}

	mockPaymentRepo.On("GetByHash", ctx, "hash-1").Return(resolved, nil)
	mockLinkRepo.On("GetByID", ctx, "link-1").Return(testLink(), nil)
	// Re-issuing for the same key returns the existing credential.
	mockWithdraws.On("Issue", ctx, "hash-1", "wallet-1", int64(200)).Return(&entities.WithdrawCredential{
		ID:    "hash-1",
		Value: 200,
	}, nil)

	payment, err := service.ResolvePayment(ctx, "hash-1")

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeWon, payment.Outcome)

	// No re-roll, no second persist, no second notification.
	mockPayments.AssertNotCalled(t, "PaymentSucceeded", mock.Anything, mock.Anything)
	mockPaymentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestDiceService_ResolvePayment_WinRateConverges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical test in short mode")
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	link := testLink()

	const trials = 2000
	wins := 0
	for i := 0; i < trials; i++ {
		mockLinkRepo := new(testhelpers.MockDiceLinkRepository)
		mockPaymentRepo := new(testhelpers.MockDicePaymentRepository)
		mockWithdraws := new(testhelpers.MockWithdrawService)
		mockPayments := new(testhelpers.MockPaymentClient)
		mockPublisher := new(testhelpers.MockEventPublisher)

		service := NewDiceService(mockLinkRepo, mockPaymentRepo, mockWithdraws, mockPayments, mockPublisher, rng)

		hash := fmt.Sprintf("hash-%d", i)
		pending := &entities.DicePayment{
			PaymentHash: hash,
			LinkID:      "link-1",
			Value:       100,
			Outcome:     entities.OutcomePending,
		}
		mockPaymentRepo.On("GetByHash", ctx, hash).Return(pending, nil)
		mockLinkRepo.On("GetByID", ctx, "link-1").Return(link, nil)
		mockPayments.On("PaymentSucceeded", ctx, hash).Return(true, nil)
		mockPaymentRepo.On("Update", ctx, mock.Anything).Return(nil)
		mockWithdraws.On("Issue", ctx, hash, "wallet-1", int64(200)).Return(&entities.WithdrawCredential{ID: hash}, nil)
		mockPublisher.On("Publish", mock.Anything).Return(nil)

		payment, err := service.ResolvePayment(ctx, hash)
		require.NoError(t, err)
		if payment.Outcome == entities.OutcomeWon {
			wins++
		}
	}

	// 50% chance over 2000 trials; allow a wide band around the mean.
	assert.InDelta(t, trials/2, wins, 150)
}

func TestDiceService_CreateBetInvoice(t *testing.T) {
	ctx := context.Background()

	mockLinkRepo := new(testhelpers.MockDiceLinkRepository)
	mockPaymentRepo := new(testhelpers.MockDicePaymentRepository)
	mockWithdraws := new(testhelpers.MockWithdrawService)
	mockPayments := new(testhelpers.MockPaymentClient)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewDiceService(mockLinkRepo, mockPaymentRepo, mockWithdraws, mockPayments, mockPublisher, fixedRand{})

	mockLinkRepo.On("GetByID", ctx, "link-1").Return(testLink(), nil)
	mockPayments.On("CreateInvoice", ctx, mock.MatchedBy(func(p interfaces.CreateInvoiceParams) bool {
		return p.WalletID == "wallet-1" &&
			p.Amount == 100 &&
			p.Extra[interfaces.ExtraKeyTag] == interfaces.TagDice &&
			p.Extra[interfaces.ExtraKeyLink] == "link-1"
	})).Return(&interfaces.Invoice{PaymentHash: "hash-1", Bolt11: "lnbc100"}, nil)
	mockPaymentRepo.On("Create", ctx, mock.MatchedBy(func(p *entities.DicePayment) bool {
		return p.PaymentHash == "hash-1" && p.Value == 100 && p.Outcome == entities.OutcomePending
	})).Return(nil)
	mockLinkRepo.On("IncrementServed", ctx, "link-1", int64(100)).Return(nil)

	invoice, err := service.CreateBetInvoice(ctx, "link-1", 100_000)

	require.NoError(t, err)
	assert.Equal(t, "hash-1", invoice.PaymentHash)
	mockPaymentRepo.AssertExpectations(t)
}

func TestDiceService_CreateBetInvoice_OutsideBand(t *testing.T) {
	ctx := context.Background()

	mockLinkRepo := new(testhelpers.MockDiceLinkRepository)
	mockPaymentRepo := new(testhelpers.MockDicePaymentRepository)
	mockWithdraws := new(testhelpers.MockWithdrawService)
	mockPayments := new(testhelpers.MockPaymentClient)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewDiceService(mockLinkRepo, mockPaymentRepo, mockWithdraws, mockPayments, mockPublisher, fixedRand{})

	mockLinkRepo.On("GetByID", ctx, "link-1").Return(testLink(), nil)

	_, err := service.CreateBetInvoice(ctx, "link-1", 5_000)
	assert.Error(t, err)

	_, err = service.CreateBetInvoice(ctx, "link-1", 2_000_000)
	assert.Error(t, err)

	mockPayments.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
}

func TestDiceService_DeleteLink_BlockedByPendingBets(t *testing.T) {
	ctx := context.Background()

	mockLinkRepo := new(testhelpers.MockDiceLinkRepository)
	mockPaymentRepo := new(testhelpers.MockDicePaymentRepository)
	mockWithdraws := new(testhelpers.MockWithdrawService)
	mockPayments := new(testhelpers.MockPaymentClient)
	mockPublisher := new(testhelpers.MockEventPublisher)

	service := NewDiceService(mockLinkRepo, mockPaymentRepo, mockWithdraws, mockPayments, mockPublisher, fixedRand{})

	mockPaymentRepo.On("CountPendingByLink", ctx, "link-1").Return(2, nil)

	err := service.DeleteLink(ctx, "link-1")

	assert.Error(t, err)
	mockLinkRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
