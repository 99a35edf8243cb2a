package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// LedgerEvent announces that the ledger changed. It carries only the kind of
// change and the affected id; consumers read the current state from the store.
type LedgerEvent struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time
func NewLedgerEvent(kind string, id int64) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes an event and rejects one without a kind
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, errors.New("ledger event without kind")
	}
	return &msg, nil
}
