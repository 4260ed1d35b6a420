package amqp

import (
	"encoding/json"
	"time"

	"financas/internal/core"
)

// Event kinds published on the audit queue.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
)

// TransactionEvent is the audit message published after a ledger mutation.
// It carries the full entry because the export worker has no access to the
// state slot.
type TransactionEvent struct {
	Kind        string           `json:"kind"`
	Username    string           `json:"username"`
	Transaction core.Transaction `json:"transaction"`
	EmittedAt   time.Time        `json:"emittedAt"`
}

// NewTransactionEvent builds an event for the given kind and entry.
func NewTransactionEvent(kind, username string, t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Kind:        kind,
		Username:    username,
		Transaction: t,
		EmittedAt:   time.Now(),
	}
}

// ToJSON converts the event to its wire form.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON parses an event from its wire form.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
