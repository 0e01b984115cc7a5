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

type withdrawService struct {
	withdrawRepo   interfaces.WithdrawRepository
	payments       interfaces.PaymentClient
	eventPublisher interfaces.EventPublisher
}

// NewWithdrawService creates a new withdraw credential service
func NewWithdrawService(
	withdrawRepo interfaces.WithdrawRepository,
	payments interfaces.PaymentClient,
	eventPublisher interfaces.EventPublisher,
) interfaces.WithdrawService {
	return &withdrawService{
		withdrawRepo:   withdrawRepo,
		payments:       payments,
		eventPublisher: eventPublisher,
	}
}

func (s *withdrawService) Issue(ctx context.Context, id, walletID string, value int64) (*entities.WithdrawCredential, error) {
	if value <= 0 {
		return nil, fmt.Errorf("credential value must be positive, got %d", value)
	}

	// One credential per payout key. A duplicate issue request returns the
	// existing credential untouched.
	existing, err := s.withdrawRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credential %s: %w", id, err)
	}
	if existing != nil {
		return existing, nil
	}

	credential := &entities.WithdrawCredential{
		ID:         id,
		WalletID:   walletID,
		Value:      value,
		UniqueHash: uuid.NewString(),
		K1:         uuid.NewString(),
		Used:       false,
	}

	if err := s.withdrawRepo.Create(ctx, credential); err != nil {
		return nil, fmt.Errorf("failed to create credential %s: %w", id, err)
	}

	log.WithFields(log.Fields{
		"credentialID": id,
		"value":        value,
	}).Info("Issued withdraw credential")

	return credential, nil
}

func (s *withdrawService) Get(ctx context.Context, id string) (*entities.WithdrawCredential, error) {
	return s.withdrawRepo.GetByID(ctx, id)
}

func (s *withdrawService) GetByUniqueHash(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error) {
	return s.withdrawRepo.GetByUniqueHash(ctx, uniqueHash)
}

func (s *withdrawService) BeginRedeem(ctx context.Context, uniqueHash string) (*entities.WithdrawCredential, error) {
	credential, err := s.withdrawRepo.ClaimByUniqueHash(ctx, uniqueHash)
	if err != nil {
		return nil, fmt.Errorf("failed to claim credential: %w", err)
	}
	if credential != nil {
		return credential, nil
	}

	// The claim did not match; distinguish a missing credential from a
	// spent one.
	existing, err := s.withdrawRepo.GetByUniqueHash(ctx, uniqueHash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}
	if existing == nil {
		return nil, interfaces.ErrCredentialNotFound
	}
	return nil, interfaces.ErrCredentialUsed
}

func (s *withdrawService) CompleteRedeem(ctx context.Context, credential *entities.WithdrawCredential) error {
	log.WithFields(log.Fields{
		"credentialID": credential.ID,
		"value":        credential.Value,
	}).Info("Withdraw credential redeemed")

	if err := s.eventPublisher.Publish(events.WithdrawRedeemedEvent{
		CredentialID: credential.ID,
		Value:        credential.Value,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish withdraw redeemed event")
	}
	return nil
}

func (s *withdrawService) RollbackRedeem(ctx context.Context, id string) error {
	if err := s.withdrawRepo.Release(ctx, id); err != nil {
		return fmt.Errorf("failed to release credential %s: %w", id, err)
	}
	log.WithField("credentialID", id).Warn("Rolled back withdraw redemption after payout failure")
	return nil
}

func (s *withdrawService) Redeem(ctx context.Context, uniqueHash, bolt11 string) error {
	credential, err := s.BeginRedeem(ctx, uniqueHash)
	if err != nil {
		return err
	}

	err = s.payments.PayInvoice(ctx, credential.WalletID, bolt11, credential.Value)
	if err == nil {
		return s.CompleteRedeem(ctx, credential)
	}

	if errors.Is(err, interfaces.ErrPaymentUnknown) {
		// The payout may have gone through. Keep the credential claimed
		// and hand it to reconciliation; rolling back here could pay the
		// same credential twice.
		log.WithFields(log.Fields{
			"credentialID": credential.ID,
			"error":        err,
		}).Error("Payout status unknown, credential held for reconciliation")

		if pubErr := s.eventPublisher.Publish(events.PayoutReconcileEvent{
			CredentialID: credential.ID,
			Value:        credential.Value,
			Reason:       err.Error(),
		}); pubErr != nil {
			log.WithError(pubErr).Warn("Failed to publish payout reconcile event")
		}
		return err
	}

	// Definite failure: make the credential redeemable again.
	if rbErr := s.RollbackRedeem(ctx, credential.ID); rbErr != nil {
		return fmt.Errorf("payout failed and rollback failed: %w", errors.Join(err, rbErr))
	}
	return fmt.Errorf("payout failed for credential %s: %w", credential.ID, err)
}
