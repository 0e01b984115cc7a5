package services

import (
	"context"
	"testing"

	"satsdice/domain/entities"
	"satsdice/domain/interfaces"
	"satsdice/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type coinflipFixture struct {
	settingsRepo *testhelpers.MockCoinflipSettingsRepository
	gameRepo     *testhelpers.MockCoinflipGameRepository
	withdraws    *testhelpers.MockWithdrawService
	payments     *testhelpers.MockPaymentClient
	resolver     *testhelpers.MockAddressResolver
	publisher    *testhelpers.MockEventPublisher
	service      interfaces.CoinflipService
}

func newCoinflipFixture(rng Rand) *coinflipFixture {
	f := &coinflipFixture{
		settingsRepo: new(testhelpers.MockCoinflipSettingsRepository),
		gameRepo:     new(testhelpers.MockCoinflipGameRepository),
		withdraws:    new(testhelpers.MockWithdrawService),
		payments:     new(testhelpers.MockPaymentClient),
		resolver:     new(testhelpers.MockAddressResolver),
		publisher:    new(testhelpers.MockEventPublisher),
	}
	f.service = NewCoinflipService(f.settingsRepo, f.gameRepo, f.withdraws, f.payments, f.resolver, f.publisher, rng)
	return f
}

func testSettings() *entities.CoinflipSettings {
	return &entities.CoinflipSettings{
		ID:         "settings-1",
		WalletID:   "wallet-1",
		MaxPlayers: 10,
		MaxBet:     10000,
		Enabled:    true,
		Haircut:    10,
	}
}

func testGame(players ...string) *entities.CoinflipGame {
	return &entities.CoinflipGame{
		ID:              "game-1",
		SettingsID:      "settings-1",
		Name:            "lunch flip",
		BuyIn:           1000,
		NumberOfPlayers: 3,
		Players:         players,
	}
}

func TestCoinflipService_Join_RecordsPlayer(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	f.gameRepo.On("GetByID", ctx, "game-1").Return(testGame("alice@ln.host"), nil)
	f.settingsRepo.On("GetByID", ctx, "settings-1").Return(testSettings(), nil)
	f.gameRepo.On("Update", ctx, mock.MatchedBy(func(g *entities.CoinflipGame) bool {
		return len(g.Players) == 2 && g.Players[1] == "bob@ln.host" && !g.Completed
	})).Return(nil)
	f.publisher.On("Publish", mock.AnythingOfType("events.CoinflipJoinedEvent")).Return(nil)

	err := f.service.Join(ctx, "game-1", "hash-b", "bob@ln.host", 1000)

	require.NoError(t, err)
	f.gameRepo.AssertExpectations(t)
	f.withdraws.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCoinflipService_Join_FinalSlotCompletesAndPays(t *testing.T) {
	ctx := context.Background()
	// Draw index 2: the triggering joiner wins.
	f := newCoinflipFixture(fixedRand{n: 2})

	game := testGame("alice@ln.host", "bob@ln.host")
	f.gameRepo.On("GetByID", ctx, "game-1").Return(game, nil)
	f.settingsRepo.On("GetByID", ctx, "settings-1").Return(testSettings(), nil)
	f.gameRepo.On("Update", ctx, mock.MatchedBy(func(g *entities.CoinflipGame) bool {
		return g.Completed && len(g.Players) == 1 && g.Players[0] == "carol@ln.host"
	})).Return(nil)
	f.publisher.On("Publish", mock.AnythingOfType("events.CoinflipCompletedEvent")).Return(nil)

	// Pot 3000 minus the 10% haircut.
	credential := &entities.WithdrawCredential{
		ID:         "game-1",
		WalletID:   "wallet-1",
		Value:      2700,
		UniqueHash: "secret",
	}
	f.withdraws.On("Issue", ctx, "game-1", "wallet-1", int64(2700)).Return(credential, nil)
	f.resolver.On("ResolveInvoice", ctx, "carol@ln.host", int64(2700)).Return("lnbc2700", nil)
	f.withdraws.On("Redeem", ctx, "secret", "lnbc2700").Return(nil)

	err := f.service.Join(ctx, "game-1", "hash-c", "carol@ln.host", 1000)

	require.NoError(t, err)
	f.withdraws.AssertExpectations(t)
	f.resolver.AssertExpectations(t)
}

func TestCoinflipService_Join_AmountMismatchIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	f.gameRepo.On("GetByID", ctx, "game-1").Return(testGame("alice@ln.host"), nil)

	err := f.service.Join(ctx, "game-1", "hash-b", "bob@ln.host", 500)

	require.NoError(t, err)
	f.gameRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestCoinflipService_Join_UnknownGameIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	f.gameRepo.On("GetByID", ctx, "game-9").Return(nil, nil)

	err := f.service.Join(ctx, "game-9", "hash-x", "bob@ln.host", 1000)

	require.NoError(t, err)
	f.gameRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCoinflipService_Join_LateJoinIsRefunded(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	game := testGame("alice@ln.host")
	game.Completed = true
	f.gameRepo.On("GetByID", ctx, "game-1").Return(game, nil)
	f.settingsRepo.On("GetByID", ctx, "settings-1").Return(testSettings(), nil)

	// Refund is the buy-in minus the 10% haircut.
	f.resolver.On("ResolveInvoice", ctx, "dave@ln.host", int64(900)).Return("lnbc900", nil)
	f.payments.On("PayInvoice", ctx, "wallet-1", "lnbc900", int64(900)).Return(nil)
	f.publisher.On("Publish", mock.AnythingOfType("events.CoinflipRefundedEvent")).Return(nil)

	err := f.service.Join(ctx, "game-1", "hash-d", "dave@ln.host", 1000)

	require.NoError(t, err)
	// The stored winner is untouched by a late join.
	f.gameRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.payments.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestCoinflipService_PayWinner_FailedPayoutIsRetryable(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	game := testGame("carol@ln.host")
	game.Completed = true
	f.gameRepo.On("GetByID", ctx, "game-1").Return(game, nil)
	f.settingsRepo.On("GetByID", ctx, "settings-1").Return(testSettings(), nil)

	credential := &entities.WithdrawCredential{
		ID:         "game-1",
		WalletID:   "wallet-1",
		Value:      2700,
		UniqueHash: "secret",
	}
	f.withdraws.On("Issue", ctx, "game-1", "wallet-1", int64(2700)).Return(credential, nil)
	f.resolver.On("ResolveInvoice", ctx, "carol@ln.host", int64(2700)).Return("lnbc2700", nil)

	// Payout fails on the first attempt, then succeeds. Issue returns the
	// same credential both times; the liability stays recorded throughout.
	f.withdraws.On("Redeem", ctx, "secret", "lnbc2700").Return(interfaces.ErrPaymentFailed).Once()
	f.withdraws.On("Redeem", ctx, "secret", "lnbc2700").Return(nil).Once()

	require.Error(t, f.service.PayWinner(ctx, "game-1"))
	require.NoError(t, f.service.PayWinner(ctx, "game-1"))

	f.withdraws.AssertExpectations(t)
}

func TestCoinflipService_PayWinner_AlreadyPaidIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	game := testGame("carol@ln.host")
	game.Completed = true
	f.gameRepo.On("GetByID", ctx, "game-1").Return(game, nil)
	f.settingsRepo.On("GetByID", ctx, "settings-1").Return(testSettings(), nil)

	credential := &entities.WithdrawCredential{
		ID:         "game-1",
		WalletID:   "wallet-1",
		Value:      2700,
		UniqueHash: "secret",
		Used:       true,
	}
	f.withdraws.On("Issue", ctx, "game-1", "wallet-1", int64(2700)).Return(credential, nil)
	f.resolver.On("ResolveInvoice", ctx, "carol@ln.host", int64(2700)).Return("lnbc2700", nil)
	f.withdraws.On("Redeem", ctx, "secret", "lnbc2700").Return(interfaces.ErrCredentialUsed)

	err := f.service.PayWinner(ctx, "game-1")

	assert.NoError(t, err)
}

func TestCoinflipService_PayWinner_IncompleteGame(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	f.gameRepo.On("GetByID", ctx, "game-1").Return(testGame("alice@ln.host"), nil)

	err := f.service.PayWinner(ctx, "game-1")

	assert.Error(t, err)
	f.withdraws.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCoinflipService_CreateGame_ValidatesAgainstSettings(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	f.settingsRepo.On("GetByID", ctx, "settings-1").Return(testSettings(), nil)

	_, err := f.service.CreateGame(ctx, "settings-1", "too rich", 50000, 3)
	assert.Error(t, err)

	_, err = f.service.CreateGame(ctx, "settings-1", "too many", 1000, 11)
	assert.Error(t, err)

	f.gameRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCoinflipService_CreateJoinInvoice(t *testing.T) {
	ctx := context.Background()
	f := newCoinflipFixture(fixedRand{})

	f.gameRepo.On("GetByID", ctx, "game-1").Return(testGame("alice@ln.host"), nil)
	f.settingsRepo.On("GetByID", ctx, "settings-1").Return(testSettings(), nil)
	f.payments.On("CreateInvoice", ctx, mock.MatchedBy(func(p interfaces.CreateInvoiceParams) bool {
		return p.WalletID == "wallet-1" &&
			p.Amount == 1000 &&
			p.Extra[interfaces.ExtraKeyTag] == interfaces.TagCoinflip &&
			p.Extra[interfaces.ExtraKeyGame] == "game-1" &&
			p.Extra[interfaces.ExtraKeyAddress] == "bob@ln.host"
	})).Return(&interfaces.Invoice{PaymentHash: "hash-b", Bolt11: "lnbc1000"}, nil)

	invoice, err := f.service.CreateJoinInvoice(ctx, "game-1", "bob@ln.host")

	require.NoError(t, err)
	assert.Equal(t, "hash-b", invoice.PaymentHash)
	f.payments.AssertExpectations(t)
}
