package services

import (
	"context"
	"errors"
	"fmt"

	"satsdice/domain/entities"
	"satsdice/domain/events"
	"satsdice/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type coinflipService struct {
	settingsRepo   interfaces.CoinflipSettingsRepository
	gameRepo       interfaces.CoinflipGameRepository
	withdraws      interfaces.WithdrawService
	payments       interfaces.PaymentClient
	resolver       interfaces.AddressResolver
	eventPublisher interfaces.EventPublisher
	rng            Rand
}

// NewCoinflipService creates a new coinflip pool coordinator
func NewCoinflipService(
	settingsRepo interfaces.CoinflipSettingsRepository,
	gameRepo interfaces.CoinflipGameRepository,
	withdraws interfaces.WithdrawService,
	payments interfaces.PaymentClient,
	resolver interfaces.AddressResolver,
	eventPublisher interfaces.EventPublisher,
	rng Rand,
) interfaces.CoinflipService {
	return &coinflipService{
		settingsRepo:   settingsRepo,
		gameRepo:       gameRepo,
		withdraws:      withdraws,
		payments:       payments,
		resolver:       resolver,
		eventPublisher: eventPublisher,
		rng:            rng,
	}
}

func (s *coinflipService) CreateSettings(ctx context.Context, settings *entities.CoinflipSettings) (*entities.CoinflipSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid coinflip settings: %w", err)
	}
	settings.ID = uuid.NewString()
	if err := s.settingsRepo.Create(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to create coinflip settings: %w", err)
	}
	return settings, nil
}

func (s *coinflipService) GetSettings(ctx context.Context, id string) (*entities.CoinflipSettings, error) {
	return s.settingsRepo.GetByID(ctx, id)
}

func (s *coinflipService) UpdateSettings(ctx context.Context, settings *entities.CoinflipSettings) (*entities.CoinflipSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid coinflip settings: %w", err)
	}
	existing, err := s.settingsRepo.GetByID(ctx, settings.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coinflip settings: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("coinflip settings %s not found", settings.ID)
	}
	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update coinflip settings: %w", err)
	}
	return settings, nil
}

func (s *coinflipService) CreateGame(ctx context.Context, settingsID, name string, buyIn int64, numberOfPlayers int) (*entities.CoinflipGame, error) {
	settings, err := s.settingsRepo.GetByID(ctx, settingsID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coinflip settings: %w", err)
	}
	if settings == nil {
		return nil, fmt.Errorf("coinflip settings %s not found", settingsID)
	}
	if !settings.Enabled {
		return nil, fmt.Errorf("coinflip is disabled for settings %s", settingsID)
	}
	if numberOfPlayers < 2 || numberOfPlayers > settings.MaxPlayers {
		return nil, fmt.Errorf("player count must be between 2 and %d", settings.MaxPlayers)
	}
	if buyIn <= 0 || buyIn > settings.MaxBet {
		return nil, fmt.Errorf("buy-in must be between 1 and %d", settings.MaxBet)
	}

	game := &entities.CoinflipGame{
		ID:              uuid.NewString(),
		SettingsID:      settingsID,
		Name:            name,
		BuyIn:           buyIn,
		NumberOfPlayers: numberOfPlayers,
		Players:         []string{},
		Completed:       false,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create coinflip game: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":  game.ID,
		"buyIn":   buyIn,
		"players": numberOfPlayers,
	}).Info("Created coinflip game")
	return game, nil
}

func (s *coinflipService) GetGame(ctx context.Context, id string) (*entities.CoinflipGame, error) {
	return s.gameRepo.GetByID(ctx, id)
}

func (s *coinflipService) CreateJoinInvoice(ctx context.Context, gameID, lnAddress string) (*interfaces.Invoice, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coinflip game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("coinflip game %s not found", gameID)
	}
	if game.Completed {
		return nil, fmt.Errorf("coinflip game %s is already completed", gameID)
	}

	settings, err := s.settingsRepo.GetByID(ctx, game.SettingsID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coinflip settings: %w", err)
	}
	if settings == nil || !settings.Enabled {
		return nil, fmt.Errorf("coinflip game %s is not accepting players", gameID)
	}

	invoice, err := s.payments.CreateInvoice(ctx, interfaces.CreateInvoiceParams{
		WalletID: settings.WalletID,
		Amount:   game.BuyIn,
		Memo:     fmt.Sprintf("Coinflip buy-in: %s", game.Name),
		Extra: map[string]string{
			interfaces.ExtraKeyTag:     interfaces.TagCoinflip,
			interfaces.ExtraKeyGame:    game.ID,
			interfaces.ExtraKeyAddress: lnAddress,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buy-in invoice: %w", err)
	}
	return invoice, nil
}

// Join settles one confirmed buy-in. It runs under the dispatcher's per-game
// serialization: no other handler mutates this game while it executes.
func (s *coinflipService) Join(ctx context.Context, gameID, paymentHash, lnAddress string, amount int64) error {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get coinflip game: %w", err)
	}
	if game == nil {
		log.WithField("gameID", gameID).Warn("Buy-in for unknown coinflip game, dropping")
		return nil
	}

	// A buy-in that doesn't match the game's price is a malformed event,
	// not a join attempt.
	if amount != game.BuyIn {
		log.WithFields(log.Fields{
			"gameID": gameID,
			"amount": amount,
			"buyIn":  game.BuyIn,
		}).Warn("Buy-in amount mismatch, dropping")
		return nil
	}

	settings, err := s.settingsRepo.GetByID(ctx, game.SettingsID)
	if err != nil {
		return fmt.Errorf("failed to get coinflip settings: %w", err)
	}
	if settings == nil {
		return fmt.Errorf("coinflip settings %s not found for game %s", game.SettingsID, gameID)
	}

	if game.Completed {
		return s.refundLateJoin(ctx, game, settings, paymentHash, lnAddress)
	}

	if len(game.Players) > game.NumberOfPlayers {
		// More joins were recorded than the game allows. This can only
		// happen if per-game serialization was violated; do not patch it.
		return fmt.Errorf("coinflip game %s has %d players for a target of %d", gameID, len(game.Players), game.NumberOfPlayers)
	}

	game.Players = append(game.Players, lnAddress)

	if !game.IsFull() {
		if err := s.gameRepo.Update(ctx, game); err != nil {
			return fmt.Errorf("failed to record join: %w", err)
		}
		log.WithFields(log.Fields{
			"gameID":  gameID,
			"players": len(game.Players),
			"target":  game.NumberOfPlayers,
		}).Info("Player joined coinflip game")

		if err := s.eventPublisher.Publish(events.CoinflipJoinedEvent{
			GameID:      gameID,
			PaymentHash: paymentHash,
			Players:     len(game.Players),
			Target:      game.NumberOfPlayers,
		}); err != nil {
			log.WithError(err).Warn("Failed to publish coinflip joined event")
		}
		return nil
	}

	// The final slot was just filled: pick the winner in the same step.
	// The triggering joiner is part of the draw.
	winner := game.Players[s.rng.Intn(len(game.Players))]
	game.Players = []string{winner}
	game.Completed = true
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return fmt.Errorf("failed to complete coinflip game: %w", err)
	}

	payout := game.WinnerPayout(settings.Haircut)
	log.WithFields(log.Fields{
		"gameID": gameID,
		"winner": winner,
		"payout": payout,
	}).Info("Coinflip game completed")

	if err := s.eventPublisher.Publish(events.CoinflipCompletedEvent{
		GameID:       gameID,
		PaymentHash:  paymentHash,
		Winner:       winner,
		TriggererWon: winner == lnAddress,
		Payout:       payout,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish coinflip completed event")
	}

	return s.PayWinner(ctx, gameID)
}

// PayWinner pays out a completed game through the winner's payout credential.
// The credential keeps the liability recorded, so a failed payout can be
// retried here without risking a double payment.
func (s *coinflipService) PayWinner(ctx context.Context, gameID string) error {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get coinflip game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("coinflip game %s not found", gameID)
	}
	if !game.Completed || len(game.Players) != 1 {
		return fmt.Errorf("coinflip game %s has no winner to pay", gameID)
	}
	winner := game.Players[0]

	settings, err := s.settingsRepo.GetByID(ctx, game.SettingsID)
	if err != nil {
		return fmt.Errorf("failed to get coinflip settings: %w", err)
	}
	if settings == nil {
		return fmt.Errorf("coinflip settings %s not found for game %s", game.SettingsID, gameID)
	}

	payout := game.WinnerPayout(settings.Haircut)
	credential, err := s.withdraws.Issue(ctx, gameID, settings.WalletID, payout)
	if err != nil {
		return fmt.Errorf("failed to issue winner credential: %w", err)
	}

	bolt11, err := s.resolver.ResolveInvoice(ctx, winner, credential.Value)
	if err != nil {
		// Nothing was claimed yet; the credential stays redeemable and a
		// retry is safe.
		return fmt.Errorf("failed to resolve winner address %s: %w", winner, err)
	}

	err = s.withdraws.Redeem(ctx, credential.UniqueHash, bolt11)
	if errors.Is(err, interfaces.ErrCredentialUsed) {
		// Already paid out by an earlier attempt.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to pay coinflip winner: %w", err)
	}
	return nil
}

func (s *coinflipService) refundLateJoin(ctx context.Context, game *entities.CoinflipGame, settings *entities.CoinflipSettings, paymentHash, lnAddress string) error {
	refund := game.RefundAmount(settings.Haircut)

	bolt11, err := s.resolver.ResolveInvoice(ctx, lnAddress, refund)
	if err != nil {
		// Abort before paying anything; a redelivered event retries.
		return fmt.Errorf("failed to resolve refund address %s: %w", lnAddress, err)
	}

	if err := s.payments.PayInvoice(ctx, settings.WalletID, bolt11, refund); err != nil {
		return fmt.Errorf("failed to refund late join on game %s: %w", game.ID, err)
	}

	log.WithFields(log.Fields{
		"gameID": game.ID,
		"refund": refund,
	}).Info("Refunded late coinflip join")

	if err := s.eventPublisher.Publish(events.CoinflipRefundedEvent{
		GameID:      game.ID,
		PaymentHash: paymentHash,
		Refund:      refund,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish coinflip refunded event")
	}
	return nil
}
