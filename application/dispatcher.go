package application

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"satsdice/domain/entities"
	"satsdice/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ErrDispatcherStopped is returned for events submitted after Stop. The
// consumer NAKs them so the payment is redelivered once the service restarts.
var ErrDispatcherStopped = errors.New("settlement dispatcher stopped")

// PaymentEvent is a confirmed inbound payment as delivered by the payment
// service. Amount is in millisatoshi; Extra carries the settlement tag and
// handler metadata attached at invoice creation.
type PaymentEvent struct {
	PaymentHash string            `json:"payment_hash"`
	Amount      int64             `json:"amount"`
	Extra       map[string]string `json:"extra"`
}

// Dispatcher consumes confirmed-payment events and routes them to the dice or
// coinflip handler by tag. Events are fanned out across shard workers for
// throughput, but events sharing a settlement key (the same bet or the same
// game) always land on the same shard and run in arrival order, one at a
// time. That serialization is what makes resolution idempotency and the
// last-slot coinflip race safe.
type Dispatcher struct {
	dice     interfaces.DiceService
	coinflip interfaces.CoinflipService

	queue  chan PaymentEvent
	shards []chan func()
	wg     sync.WaitGroup
	ctx    context.Context

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewDispatcher creates a settlement dispatcher with the given number of
// shard workers
func NewDispatcher(dice interfaces.DiceService, coinflip interfaces.CoinflipService, shardCount int) *Dispatcher {
	if shardCount < 1 {
		shardCount = 1
	}
	shards := make([]chan func(), shardCount)
	for i := range shards {
		shards[i] = make(chan func(), 64)
	}
	return &Dispatcher{
		dice:     dice,
		coinflip: coinflip,
		queue:    make(chan PaymentEvent, 256),
		shards:   shards,
	}
}

// Start launches the routing loop and the shard workers. Handlers run with
// the given context; it must outlive Stop so in-flight payouts are not
// cancelled mid-flight.
func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx = ctx

	for _, shard := range d.shards {
		d.wg.Add(1)
		go func(tasks <-chan func()) {
			defer d.wg.Done()
			for task := range tasks {
				task()
			}
		}(shard)
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for event := range d.queue {
			d.route(event)
		}
		for _, shard := range d.shards {
			close(shard)
		}
	}()

	log.WithField("shards", len(d.shards)).Info("Settlement dispatcher started")
}

// Stop drains the queue and waits for all in-flight handlers, including any
// outbound payouts, to finish.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
		log.Info("Settlement dispatcher stopped")
	})
}

// Submit enqueues a confirmed-payment event for settlement. Returns
// ErrDispatcherStopped once Stop has been called.
func (d *Dispatcher) Submit(event PaymentEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}
	d.queue <- event
	return nil
}

// ResolveDice settles a dice bet through the bet's serialization shard, so a
// synchronous caller never races a queued settlement event for the same bet.
func (d *Dispatcher) ResolveDice(ctx context.Context, paymentHash string) (*entities.DicePayment, error) {
	type result struct {
		payment *entities.DicePayment
		err     error
	}
	done := make(chan result, 1)
	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		return nil, ErrDispatcherStopped
	}
	d.shardFor(diceKey(paymentHash)) <- func() {
		payment, err := d.dice.ResolvePayment(ctx, paymentHash)
		done <- result{payment, err}
	}
	d.mu.RUnlock()
	res := <-done
	return res.payment, res.err
}

// RetryPayout re-attempts a completed coinflip game's winner payout through
// the game's serialization shard.
func (d *Dispatcher) RetryPayout(ctx context.Context, gameID string) error {
	done := make(chan error, 1)
	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		return ErrDispatcherStopped
	}
	d.shardFor(coinflipKey(gameID)) <- func() {
		done <- d.coinflip.PayWinner(ctx, gameID)
	}
	d.mu.RUnlock()
	return <-done
}

func (d *Dispatcher) route(event PaymentEvent) {
	tag := event.Extra[interfaces.ExtraKeyTag]

	switch tag {
	case interfaces.TagDice:
		d.shardFor(diceKey(event.PaymentHash)) <- func() {
			if _, err := d.dice.ResolvePayment(d.ctx, event.PaymentHash); err != nil {
				log.WithFields(log.Fields{
					"paymentHash": event.PaymentHash,
					"error":       err,
				}).Error("Failed to settle dice bet")
			}
		}

	case interfaces.TagCoinflip:
		gameID := event.Extra[interfaces.ExtraKeyGame]
		lnAddress := event.Extra[interfaces.ExtraKeyAddress]
		if gameID == "" || lnAddress == "" {
			log.WithField("paymentHash", event.PaymentHash).Warn("Coinflip event missing game or address metadata, dropping")
			return
		}
		amount := event.Amount / 1000
		d.shardFor(coinflipKey(gameID)) <- func() {
			if err := d.coinflip.Join(d.ctx, gameID, event.PaymentHash, lnAddress, amount); err != nil {
				log.WithFields(log.Fields{
					"gameID":      gameID,
					"paymentHash": event.PaymentHash,
					"error":       err,
				}).Error("Failed to settle coinflip buy-in")
			}
		}

	default:
		log.WithFields(log.Fields{
			"paymentHash": event.PaymentHash,
			"tag":         tag,
		}).Debug("Ignoring payment event with unrecognized tag")
	}
}

func (d *Dispatcher) shardFor(key string) chan func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	return d.shards[h.Sum32()%uint32(len(d.shards))]
}

func diceKey(paymentHash string) string {
	return "dice:" + paymentHash
}

func coinflipKey(gameID string) string {
	return "coinflip:" + gameID
}
