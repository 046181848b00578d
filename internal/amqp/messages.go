package amqp

import (
	"encoding/json"
	"time"
)

// Record change actions carried on the wire.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordChangeMessage is the lightweight event published per mutation.
// It carries only the record id and the action; the mirror worker fetches
// the current row from the database rather than trusting stale payloads.
type RecordChangeMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangeMessage(id, action string) *RecordChangeMessage {
	return &RecordChangeMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
