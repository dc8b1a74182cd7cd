package mirror

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

// Reduce applies a broadcast event to the local state.
//
// Events that concern the local user (joining, leaving or being kicked) are
// handled here; everything else uses the room fold so the mirror cannot
// drift from the server.
func Reduce(state State, evt event.Event) (State, error) {
	next := state.Clone()
	if next.Users == nil {
		next.Users = map[string]room.User{}
	}
	if next.Stories == nil {
		next.Stories = map[string]room.Story{}
	}

	switch evt.Type {
	case room.EventTypeRoomCreated:
		if next.RoomID == "" {
			next.RoomID = evt.RoomID
		}
		return appendLog(next, evt), nil
	case room.EventTypeJoinedRoom:
		var payload room.JoinedRoomPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		userID := payload.UserID
		if userID == "" {
			userID = evt.UserID
		}
		if userID == next.UserID {
			next = bootstrap(next, evt.RoomID, payload)
		} else {
			next = mergeUsers(next, userID, payload.Users)
		}
		return appendLog(next, evt), nil
	case room.EventTypeLeftRoom, room.EventTypeKicked:
		var payload room.UserRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		userID := payload.UserID
		if userID == "" {
			userID = evt.UserID
		}
		if userID == next.UserID {
			reset := Initial()
			reset.UserID = next.UserID
			reset.ActionLog = next.ActionLog
			return appendLog(reset, evt), nil
		}
	}

	folded, err := room.Fold(next.toRoom(), evt)
	if err != nil {
		return state, err
	}
	if next.RoomID != "" {
		folded.ID = next.RoomID
	}
	return appendLog(next.withRoom(folded), evt), nil
}

// bootstrap adopts the snapshot carried by the local user's own joinedRoom.
func bootstrap(state State, roomID string, payload room.JoinedRoomPayload) State {
	snapshot := room.Room{
		Users:      payload.Users,
		Stories:    payload.Stories,
		CardConfig: payload.CardConfig,
	}.Clone()
	state.RoomID = roomID
	state.Users = snapshot.Users
	state.Stories = snapshot.Stories
	state.SelectedStory = payload.SelectedStory
	state.AutoReveal = payload.AutoReveal
	state.CardConfig = snapshot.CardConfig
	if state.Users == nil {
		state.Users = map[string]room.User{}
	}
	if state.Stories == nil {
		state.Stories = map[string]room.Story{}
	}
	return state
}

// mergeUsers adds users from another member's join without overwriting what
// the mirror already knows. The joining user's own entry is taken as sent.
func mergeUsers(state State, joiningID string, users map[string]room.User) State {
	for id, user := range users {
		if _, ok := state.Users[id]; ok && id != joiningID {
			continue
		}
		if user.ID == "" {
			user.ID = id
		}
		if id == joiningID {
			user.Disconnected = false
		}
		state.Users[id] = user
	}
	if _, ok := state.Users[joiningID]; !ok {
		state.Users[joiningID] = room.User{ID: joiningID}
	}
	return state
}

func appendLog(state State, evt event.Event) State {
	state.ActionLog = append(state.ActionLog, LogEntry{
		EventID:   evt.ID,
		Type:      evt.Type,
		UserID:    evt.UserID,
		Timestamp: evt.Timestamp,
	})
	if over := len(state.ActionLog) - maxActionLog; over > 0 {
		state.ActionLog = append([]LogEntry(nil), state.ActionLog[over:]...)
	}
	return state
}

func decode(evt event.Event, target any) error {
	if len(evt.PayloadJSON) == 0 {
		return nil
	}
	if err := json.Unmarshal(evt.PayloadJSON, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", evt.Type, err)
	}
	return nil
}
