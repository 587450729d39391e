package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event names double as routing keys on the direct exchange.
type Event string

const (
	EventRecordsAppended Event = "records.appended"
	EventRecordsCleared  Event = "records.cleared"
)

// Events lists every routing key the sync queue is bound to.
var Events = []Event{EventRecordsAppended, EventRecordsCleared}

// RecordsMessage notifies the sync worker that the record table changed.
// It carries only identifiers: the worker reads pending rows from SQLite.
type RecordsMessage struct {
	Event     Event     `json:"event"`
	IDs       []string  `json:"ids,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordsAppended(ids []string) *RecordsMessage {
	return &RecordsMessage{Event: EventRecordsAppended, IDs: ids, Timestamp: time.Now()}
}

func NewRecordsCleared() *RecordsMessage {
	return &RecordsMessage{Event: EventRecordsCleared, Timestamp: time.Now()}
}

func (m *RecordsMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordsMessageFromJSON decodes a message and rejects unknown events.
func RecordsMessageFromJSON(data []byte) (*RecordsMessage, error) {
	var msg RecordsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Event {
	case EventRecordsAppended, EventRecordsCleared:
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown event %q", msg.Event)
	}
}
