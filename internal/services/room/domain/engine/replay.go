package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

// ErrEventSourceRequired indicates a replay loader without an event source.
var ErrEventSourceRequired = errors.New("event source is required")

// EventSource lists a room's journaled events in sequence order.
type EventSource interface {
	ListEvents(ctx context.Context, roomID string) ([]event.Event, error)
}

// ReplayLoader rebuilds rooms by folding their journal from the beginning.
type ReplayLoader struct {
	Events EventSource
}

// LoadRoom replays every journaled event for roomID. It reports false when
// the journal holds nothing for the room. Replayed users come back marked as
// disconnected so they can join again.
func (l ReplayLoader) LoadRoom(ctx context.Context, roomID string) (room.Room, bool, error) {
	if l.Events == nil {
		return room.Room{}, false, ErrEventSourceRequired
	}
	events, err := l.Events.ListEvents(ctx, roomID)
	if err != nil {
		return room.Room{}, false, err
	}
	if len(events) == 0 {
		return room.Room{}, false, nil
	}
	state := room.Room{}
	for _, evt := range events {
		state, err = room.Fold(state, evt)
		if err != nil {
			return room.Room{}, false, fmt.Errorf("replay seq %d: %w", evt.Seq, err)
		}
	}
	// A room that had to be replayed has no live connections.
	for userID, user := range state.Users {
		user.Disconnected = true
		state.Users[userID] = user
	}
	return state, state.Created, nil
}
