package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDiceResolved      EventType = "dice_resolved"
	EventTypeCoinflipJoined    EventType = "coinflip_joined"
	EventTypeCoinflipCompleted EventType = "coinflip_completed"
	EventTypeCoinflipRefunded  EventType = "coinflip_refunded"
	EventTypeWithdrawRedeemed  EventType = "withdraw_redeemed"
	EventTypePayoutReconcile   EventType = "payout_reconcile"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DiceResolvedEvent is emitted once when a dice bet reaches a terminal
// outcome. PaymentHash addresses the player who placed the bet.
type DiceResolvedEvent struct {
	PaymentHash string
	LinkID      string
	Value       int64
	Won         bool
	Payout      int64
}

func (e DiceResolvedEvent) Type() EventType {
	return EventTypeDiceResolved
}

// CoinflipJoinedEvent is emitted when a buy-in lands on a still-open game.
type CoinflipJoinedEvent struct {
	GameID      string
	PaymentHash string
	Players     int
	Target      int
}

func (e CoinflipJoinedEvent) Type() EventType {
	return EventTypeCoinflipJoined
}

// CoinflipCompletedEvent is emitted exactly once, when the final buy-in fills
// the game. PaymentHash addresses the joiner whose payment triggered
// completion; only that player is synchronously addressable.
type CoinflipCompletedEvent struct {
	GameID       string
	PaymentHash  string
	Winner       string
	TriggererWon bool
	Payout       int64
}

func (e CoinflipCompletedEvent) Type() EventType {
	return EventTypeCoinflipCompleted
}

// CoinflipRefundedEvent is emitted when a buy-in arrives after completion and
// the player is refunded.
type CoinflipRefundedEvent struct {
	GameID      string
	PaymentHash string
	Refund      int64
}

func (e CoinflipRefundedEvent) Type() EventType {
	return EventTypeCoinflipRefunded
}

// WithdrawRedeemedEvent is emitted after a withdraw credential was paid out.
type WithdrawRedeemedEvent struct {
	CredentialID string
	Value        int64
}

func (e WithdrawRedeemedEvent) Type() EventType {
	return EventTypeWithdrawRedeemed
}

// PayoutReconcileEvent is emitted when an outbound payout ended in an unknown
// state. The credential stays used until an operator reconciles it against
// the payment service; auto-rollback here could double-pay.
type PayoutReconcileEvent struct {
	CredentialID string
	Value        int64
	Reason       string
}

func (e PayoutReconcileEvent) Type() EventType {
	return EventTypePayoutReconcile
}
