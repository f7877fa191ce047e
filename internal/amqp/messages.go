package amqp

import (
	"encoding/json"
	"time"
)

// Transaction event actions.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEventMessage notifies the audit worker that a transaction was
// created or deleted. For created events the worker fetches the row from the
// database, so only the ID travels; deleted events carry the amount and
// category inline because the row is already gone.
type TransactionEventMessage struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Action      string    `json:"action"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Category    string    `json:"category,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewCreatedMessage builds the event published after a transaction insert.
func NewCreatedMessage(id, userID int64) *TransactionEventMessage {
	return &TransactionEventMessage{
		ID:        id,
		UserID:    userID,
		Action:    ActionCreated,
		Timestamp: time.Now(),
	}
}

// NewDeletedMessage builds the event published after a transaction delete,
// carrying the details needed for the audit entry.
func NewDeletedMessage(id, userID, amountCents int64, category string) *TransactionEventMessage {
	return &TransactionEventMessage{
		ID:          id,
		UserID:      userID,
		Action:      ActionDeleted,
		AmountCents: amountCents,
		Category:    category,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON creates a message from JSON bytes
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
