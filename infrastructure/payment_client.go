package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"satsdice/domain/interfaces"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Wallet service request/reply subjects.
const (
	WalletCreateInvoiceSubject = "wallet.invoice.create"
	WalletPayInvoiceSubject    = "wallet.invoice.pay"
	WalletPaymentStatusSubject = "wallet.payment.status"
)

const (
	createInvoiceTimeout = 10 * time.Second
	// Outbound payments can take a while to route; the wallet service replies
	// once the payment reaches a terminal state.
	payInvoiceTimeout    = 60 * time.Second
	paymentStatusTimeout = 10 * time.Second
)

type createInvoiceRequest struct {
	WalletID string            `json:"wallet_id"`
	Amount   int64             `json:"amount"`
	Memo     string            `json:"memo"`
	Extra    map[string]string `json:"extra,omitempty"`
}

type createInvoiceResponse struct {
	PaymentHash string `json:"payment_hash"`
	Bolt11      string `json:"bolt11"`
	Error       string `json:"error,omitempty"`
}

type payInvoiceRequest struct {
	WalletID string `json:"wallet_id"`
	Bolt11   string `json:"bolt11"`
	MaxSat   int64  `json:"max_sat"`
}

type payInvoiceResponse struct {
	Paid  bool   `json:"paid"`
	Error string `json:"error,omitempty"`
}

type paymentStatusRequest struct {
	PaymentHash string `json:"payment_hash"`
}

type paymentStatusResponse struct {
	Settled bool   `json:"settled"`
	Error   string `json:"error,omitempty"`
}

// WalletPaymentClient implements the PaymentClient interface over NATS
// request/reply against the wallet service.
type WalletPaymentClient struct {
	natsClient *NATSClient
}

// NewWalletPaymentClient creates a new wallet payment client
func NewWalletPaymentClient(natsClient *NATSClient) *WalletPaymentClient {
	return &WalletPaymentClient{natsClient: natsClient}
}

// CreateInvoice creates an inbound invoice for the given amount in sats
func (c *WalletPaymentClient) CreateInvoice(ctx context.Context, params interfaces.CreateInvoiceParams) (*interfaces.Invoice, error) {
	reqData, err := json.Marshal(createInvoiceRequest{
		WalletID: params.WalletID,
		Amount:   params.Amount,
		Memo:     params.Memo,
		Extra:    params.Extra,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice request: %w", err)
	}

	respData, err := c.natsClient.Request(ctx, WalletCreateInvoiceSubject, reqData, createInvoiceTimeout)
	if err != nil {
		return nil, fmt.Errorf("wallet service invoice request failed: %w", err)
	}

	var resp createInvoiceResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode invoice response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("wallet service rejected invoice: %s", resp.Error)
	}

	return &interfaces.Invoice{
		PaymentHash: resp.PaymentHash,
		Bolt11:      resp.Bolt11,
	}, nil
}

// PayInvoice pays an outbound invoice from the given wallet. A definitive
// rejection maps to ErrPaymentFailed; a timeout or transport failure maps to
// ErrPaymentUnknown because the payment may still complete.
func (c *WalletPaymentClient) PayInvoice(ctx context.Context, walletID, bolt11 string, maxSat int64) error {
	reqData, err := json.Marshal(payInvoiceRequest{
		WalletID: walletID,
		Bolt11:   bolt11,
		MaxSat:   maxSat,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal pay request: %w", err)
	}

	respData, err := c.natsClient.Request(ctx, WalletPayInvoiceSubject, reqData, payInvoiceTimeout)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			// Nobody could have taken the payment.
			return fmt.Errorf("%w: wallet service unavailable", interfaces.ErrPaymentFailed)
		}
		log.WithFields(log.Fields{
			"walletID": walletID,
			"error":    err,
		}).Error("Outbound payment ended in unknown state")
		return fmt.Errorf("%w: %v", interfaces.ErrPaymentUnknown, err)
	}

	var resp payInvoiceResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		return fmt.Errorf("%w: undecodable reply: %v", interfaces.ErrPaymentUnknown, err)
	}
	if resp.Error != "" {
		return fmt.Errorf("%w: %s", interfaces.ErrPaymentFailed, resp.Error)
	}
	if !resp.Paid {
		return fmt.Errorf("%w: wallet service reported unpaid", interfaces.ErrPaymentFailed)
	}

	return nil
}

// PaymentSucceeded reports whether an inbound payment actually settled
func (c *WalletPaymentClient) PaymentSucceeded(ctx context.Context, paymentHash string) (bool, error) {
	reqData, err := json.Marshal(paymentStatusRequest{PaymentHash: paymentHash})
	if err != nil {
		return false, fmt.Errorf("failed to marshal status request: %w", err)
	}

	respData, err := c.natsClient.Request(ctx, WalletPaymentStatusSubject, reqData, paymentStatusTimeout)
	if err != nil {
		return false, fmt.Errorf("wallet service status request failed: %w", err)
	}

	var resp paymentStatusResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		return false, fmt.Errorf("failed to decode status response: %w", err)
	}
	if resp.Error != "" {
		return false, fmt.Errorf("wallet service status error: %s", resp.Error)
	}

	return resp.Settled, nil
}
