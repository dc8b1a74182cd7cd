package command

import "encoding/json"

// Type identifies the command type string.
type Type string

// Command captures the canonical command envelope.
type Command struct {
	ID          string
	RoomID      string
	Type        Type
	UserID      string
	PayloadJSON []byte
}

// wireCommand is the JSON shape clients send. The actor is deliberately absent.
type wireCommand struct {
	ID      string          `json:"id"`
	RoomID  string          `json:"roomId"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON encodes the command in its wire shape, omitting the actor.
func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCommand{
		ID:      c.ID,
		RoomID:  c.RoomID,
		Name:    string(c.Type),
		Payload: json.RawMessage(c.PayloadJSON),
	})
}

// UnmarshalJSON decodes a wire command. UserID is left empty for the
// transport to fill in.
func (c *Command) UnmarshalJSON(data []byte) error {
	var wire wireCommand
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*c = Command{
		ID:          wire.ID,
		RoomID:      wire.RoomID,
		Type:        Type(wire.Name),
		PayloadJSON: []byte(wire.Payload),
	}
	return nil
}
