package services

import (
	"context"
	"fmt"

	"satsdice/domain/entities"
	"satsdice/domain/events"
	"satsdice/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Rand is the uniform integer source used for dice rolls and winner draws.
// *math/rand.Rand satisfies it; tests substitute fixed draws.
type Rand interface {
	Intn(n int) int
}

type diceService struct {
	linkRepo       interfaces.DiceLinkRepository
	paymentRepo    interfaces.DicePaymentRepository
	withdraws      interfaces.WithdrawService
	payments       interfaces.PaymentClient
	eventPublisher interfaces.EventPublisher
	rng            Rand
}

// NewDiceService creates a new dice settlement service
func NewDiceService(
	linkRepo interfaces.DiceLinkRepository,
	paymentRepo interfaces.DicePaymentRepository,
	withdraws interfaces.WithdrawService,
	payments interfaces.PaymentClient,
	eventPublisher interfaces.EventPublisher,
	rng Rand,
) interfaces.DiceService {
	return &diceService{
		linkRepo:       linkRepo,
		paymentRepo:    paymentRepo,
		withdraws:      withdraws,
		payments:       payments,
		eventPublisher: eventPublisher,
		rng:            rng,
	}
}

func (s *diceService) CreateLink(ctx context.Context, link *entities.DiceLink) (*entities.DiceLink, error) {
	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dice link: %w", err)
	}
	link.ID = uuid.NewString()
	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create dice link: %w", err)
	}
	log.WithFields(log.Fields{
		"linkID":     link.ID,
		"chance":     link.Chance,
		"multiplier": link.Multiplier,
	}).Info("Created dice link")
	return link, nil
}

func (s *diceService) GetLink(ctx context.Context, id string) (*entities.DiceLink, error) {
	return s.linkRepo.GetByID(ctx, id)
}

func (s *diceService) ListLinks(ctx context.Context, walletID string) ([]*entities.DiceLink, error) {
	return s.linkRepo.GetByWallet(ctx, walletID)
}

func (s *diceService) UpdateLink(ctx context.Context, id string, update entities.UpdateDiceLink) (*entities.DiceLink, error) {
	link, err := s.linkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dice link: %w", err)
	}
	if link == nil {
		return nil, fmt.Errorf("dice link %s not found", id)
	}

	link.Apply(update)
	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dice link update: %w", err)
	}
	if err := s.linkRepo.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to update dice link: %w", err)
	}
	return link, nil
}

func (s *diceService) DeleteLink(ctx context.Context, id string) error {
	pending, err := s.paymentRepo.CountPendingByLink(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count pending bets: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("dice link %s has %d unresolved bets", id, pending)
	}
	return s.linkRepo.Delete(ctx, id)
}

func (s *diceService) CreateBetInvoice(ctx context.Context, linkID string, amountMsat int64) (*interfaces.Invoice, error) {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dice link: %w", err)
	}
	if link == nil {
		return nil, fmt.Errorf("dice link %s not found", linkID)
	}

	value := amountMsat / 1000
	if !link.AcceptsAmount(value) {
		return nil, fmt.Errorf("amount %d is outside bet range %d-%d", value, link.MinBet, link.MaxBet)
	}

	invoice, err := s.payments.CreateInvoice(ctx, interfaces.CreateInvoiceParams{
		WalletID: link.WalletID,
		Amount:   value,
		Memo:     "Satsdice bet",
		Extra: map[string]string{
			interfaces.ExtraKeyTag:  interfaces.TagDice,
			interfaces.ExtraKeyLink: link.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bet invoice: %w", err)
	}

	payment := &entities.DicePayment{
		PaymentHash: invoice.PaymentHash,
		LinkID:      link.ID,
		Value:       value,
		Outcome:     entities.OutcomePending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record pending bet: %w", err)
	}

	if err := s.linkRepo.IncrementServed(ctx, link.ID, value); err != nil {
		log.WithError(err).WithField("linkID", link.ID).Warn("Failed to bump served counters")
	}

	return invoice, nil
}

func (s *diceService) ResolvePayment(ctx context.Context, paymentHash string) (*entities.DicePayment, error) {
	payment, err := s.paymentRepo.GetByHash(ctx, paymentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", paymentHash, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("no bet recorded for payment %s", paymentHash)
	}

	link, err := s.linkRepo.GetByID(ctx, payment.LinkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dice link: %w", err)
	}
	if link == nil {
		return nil, fmt.Errorf("dice link %s not found for bet %s", payment.LinkID, paymentHash)
	}

	if payment.IsResolved() {
		// Duplicate delivery. Never re-roll; for a won bet make sure the
		// credential exists in case the first run died before issuing it.
		log.WithField("paymentHash", paymentHash).Debug("Bet already resolved, skipping")
		if payment.Outcome == entities.OutcomeWon {
			if _, err := s.withdraws.Issue(ctx, paymentHash, link.WalletID, link.WinAmount(payment.Value)); err != nil {
				return nil, fmt.Errorf("failed to ensure payout credential: %w", err)
			}
		}
		return payment, nil
	}

	settled, err := s.payments.PaymentSucceeded(ctx, paymentHash)
	if err != nil {
		// Leave the bet pending; the event will be redelivered.
		return nil, fmt.Errorf("failed to verify payment %s: %w", paymentHash, err)
	}

	roll := s.rng.Intn(100)
	won := settled && float64(roll) < link.Chance

	if !won {
		payment.Outcome = entities.OutcomeLost
		if err := s.paymentRepo.Update(ctx, payment); err != nil {
			return nil, fmt.Errorf("failed to persist lost bet: %w", err)
		}
		log.WithFields(log.Fields{
			"paymentHash": paymentHash,
			"roll":        roll,
			"chance":      link.Chance,
			"settled":     settled,
		}).Info("Dice bet lost")
		s.publishResolved(payment, 0)
		return payment, nil
	}

	payment.Outcome = entities.OutcomeWon
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist won bet: %w", err)
	}

	payout := link.WinAmount(payment.Value)
	if _, err := s.withdraws.Issue(ctx, paymentHash, link.WalletID, payout); err != nil {
		// The win is persisted; a redelivered event re-issues the
		// credential through the duplicate path above.
		return nil, fmt.Errorf("failed to issue payout credential: %w", err)
	}

	log.WithFields(log.Fields{
		"paymentHash": paymentHash,
		"roll":        roll,
		"chance":      link.Chance,
		"payout":      payout,
	}).Info("Dice bet won")
	s.publishResolved(payment, payout)
	return payment, nil
}

func (s *diceService) GetOutcome(ctx context.Context, paymentHash string) (*entities.DiceOutcome, error) {
	payment, err := s.paymentRepo.GetByHash(ctx, paymentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", paymentHash, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("no bet recorded for payment %s", paymentHash)
	}

	link, err := s.linkRepo.GetByID(ctx, payment.LinkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dice link: %w", err)
	}

	outcome := &entities.DiceOutcome{Payment: payment, Link: link}
	if payment.Outcome == entities.OutcomeWon {
		credential, err := s.withdraws.Get(ctx, paymentHash)
		if err != nil {
			return nil, fmt.Errorf("failed to get payout credential: %w", err)
		}
		outcome.Credential = credential
	}
	return outcome, nil
}

func (s *diceService) publishResolved(payment *entities.DicePayment, payout int64) {
	if err := s.eventPublisher.Publish(events.DiceResolvedEvent{
		PaymentHash: payment.PaymentHash,
		LinkID:      payment.LinkID,
		Value:       payment.Value,
		Won:         payment.Outcome == entities.OutcomeWon,
		Payout:      payout,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish dice resolved event")
	}
}
