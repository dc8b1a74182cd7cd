package command

import (
	"time"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
)

// NewEvent builds an event.Event by copying the shared envelope fields from a
// command: the room, the acting user, and the command id as correlation id.
func NewEvent(cmd Command, eventType event.Type, payloadJSON []byte, now time.Time) event.Event {
	return event.Event{
		CorrelationID: cmd.ID,
		RoomID:        cmd.RoomID,
		Type:          eventType,
		UserID:        cmd.UserID,
		Timestamp:     now,
		PayloadJSON:   payloadJSON,
	}
}
