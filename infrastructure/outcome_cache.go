package infrastructure

import (
	"context"
	"fmt"
	"time"

	"satsdice/domain/events"
	"satsdice/domain/interfaces"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const outcomeCacheTTL = 24 * time.Hour

// OutcomeCache keeps recent wager outcomes in Redis so players polling for
// results don't hit the database. It decorates an EventPublisher: outcomes are
// cached as their events pass through, and cache failures never block
// settlement.
type OutcomeCache struct {
	rdb  *redis.Client
	next interfaces.EventPublisher
}

// NewOutcomeCache creates an outcome cache wrapping the given publisher
func NewOutcomeCache(addr, password string, next interfaces.EventPublisher) *OutcomeCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &OutcomeCache{rdb: rdb, next: next}
}

// Publish caches the outcome the event carries, then forwards it
func (c *OutcomeCache) Publish(event events.Event) error {
	ctx := context.Background()

	switch e := event.(type) {
	case events.DiceResolvedEvent:
		outcome := "lost"
		if e.Won {
			outcome = "won"
		}
		c.set(ctx, diceOutcomeKey(e.PaymentHash), outcome)

	case events.CoinflipJoinedEvent:
		c.set(ctx, gameStatusKey(e.GameID), fmt.Sprintf("open:%d/%d", e.Players, e.Target))

	case events.CoinflipCompletedEvent:
		c.set(ctx, gameStatusKey(e.GameID), "completed:"+e.Winner)
	}

	return c.next.Publish(event)
}

// GetDiceOutcome returns the cached outcome for a bet, or "" on a miss
func (c *OutcomeCache) GetDiceOutcome(ctx context.Context, paymentHash string) string {
	return c.get(ctx, diceOutcomeKey(paymentHash))
}

// GetGameStatus returns the cached status for a game, or "" on a miss
func (c *OutcomeCache) GetGameStatus(ctx context.Context, gameID string) string {
	return c.get(ctx, gameStatusKey(gameID))
}

// Ping verifies the Redis connection
func (c *OutcomeCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *OutcomeCache) Close() error {
	return c.rdb.Close()
}

func (c *OutcomeCache) set(ctx context.Context, key, value string) {
	if err := c.rdb.Set(ctx, key, value, outcomeCacheTTL).Err(); err != nil {
		log.WithFields(log.Fields{
			"key":   key,
			"error": err,
		}).Warn("Failed to cache outcome")
	}
}

func (c *OutcomeCache) get(ctx context.Context, key string) string {
	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.WithFields(log.Fields{
				"key":   key,
				"error": err,
			}).Warn("Failed to read cached outcome")
		}
		return ""
	}
	return value
}

func diceOutcomeKey(paymentHash string) string {
	return "satsdice:dice:outcome:" + paymentHash
}

func gameStatusKey(gameID string) string {
	return "satsdice:coinflip:status:" + gameID
}
