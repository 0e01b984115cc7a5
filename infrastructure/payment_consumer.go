package infrastructure

import (
	"encoding/json"
	"fmt"

	"satsdice/application"

	log "github.com/sirupsen/logrus"
)

// PaymentSettledSubject carries confirmed inbound payments from the wallet
// service.
const PaymentSettledSubject = "payments.settled"

// PaymentConsumer subscribes to confirmed-payment events and feeds them into
// the settlement dispatcher
type PaymentConsumer struct {
	natsClient *NATSClient
	dispatcher *application.Dispatcher
}

// NewPaymentConsumer creates a new payment consumer
func NewPaymentConsumer(natsClient *NATSClient, dispatcher *application.Dispatcher) *PaymentConsumer {
	return &PaymentConsumer{
		natsClient: natsClient,
		dispatcher: dispatcher,
	}
}

// Start subscribes to the payment stream. Events are acknowledged once they
// are handed to the dispatcher's queue; the dispatcher owns retries from
// there, so a redelivered event only happens on a crash before enqueue.
func (pc *PaymentConsumer) Start() error {
	if err := pc.natsClient.EnsurePaymentStream(); err != nil {
		return fmt.Errorf("failed to ensure payment stream: %w", err)
	}

	err := pc.natsClient.Subscribe(PaymentSettledSubject, func(data []byte) error {
		var event application.PaymentEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.WithError(err).Error("Failed to decode payment event, dropping")
			// A malformed payload will never parse; do not NAK it into a
			// redelivery loop.
			return nil
		}

		if event.PaymentHash == "" {
			log.Warn("Payment event missing payment hash, dropping")
			return nil
		}

		// A submit refused mid-shutdown is NAKed so the payment is
		// redelivered after restart instead of being lost.
		return pc.dispatcher.Submit(event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to payment events: %w", err)
	}

	log.Info("Payment consumer started")
	return nil
}
