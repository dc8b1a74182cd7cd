package event

import (
	"encoding/json"
	"time"
)

// Type identifies the event type string.
type Type string

// Event is the envelope broadcast to every member of a room.
type Event struct {
	ID            string
	CorrelationID string
	RoomID        string
	Type          Type
	UserID        string
	Timestamp     time.Time
	Seq           uint64
	PayloadJSON   []byte
}

// wireEvent is the JSON shape shared with clients.
type wireEvent struct {
	ID            string          `json:"id"`
	CorrelationID string          `json:"correlationId"`
	RoomID        string          `json:"roomId"`
	Name          string          `json:"name"`
	UserID        string          `json:"userId"`
	Timestamp     int64           `json:"timestamp,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the event in its wire shape.
func (e Event) MarshalJSON() ([]byte, error) {
	payload := json.RawMessage(e.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	wire := wireEvent{
		ID:            e.ID,
		CorrelationID: e.CorrelationID,
		RoomID:        e.RoomID,
		Name:          string(e.Type),
		UserID:        e.UserID,
		Payload:       payload,
	}
	if !e.Timestamp.IsZero() {
		wire.Timestamp = e.Timestamp.UTC().UnixMilli()
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the wire shape into an event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*e = Event{
		ID:            wire.ID,
		CorrelationID: wire.CorrelationID,
		RoomID:        wire.RoomID,
		Type:          Type(wire.Name),
		UserID:        wire.UserID,
		PayloadJSON:   []byte(wire.Payload),
	}
	if wire.Timestamp != 0 {
		e.Timestamp = time.UnixMilli(wire.Timestamp).UTC()
	}
	return nil
}
