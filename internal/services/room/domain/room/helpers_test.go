package room

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}

func newCommand(t *testing.T, cmdType command.Type, userID string, payload any) command.Command {
	t.Helper()
	raw := []byte("{}")
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	return command.Command{
		ID:          "cmd-" + string(cmdType),
		RoomID:      "room-1",
		Type:        cmdType,
		UserID:      userID,
		PayloadJSON: raw,
	}
}

// apply decides cmd against state and folds the produced events.
func apply(t *testing.T, state Room, cmd command.Command) (Room, command.Decision) {
	t.Helper()
	decision := Decide(state, cmd, clock, sequentialIDs("story-"))
	if decision.Rejected() {
		return state, decision
	}
	next, err := foldAll(state, decision.Events)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	return next, decision
}

func foldAll(state Room, events []event.Event) (Room, error) {
	for _, evt := range events {
		var err error
		state, err = Fold(state, evt)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

func mustAccept(t *testing.T, state Room, cmd command.Command) (Room, command.Decision) {
	t.Helper()
	next, decision := apply(t, state, cmd)
	if decision.Rejected() {
		t.Fatalf("%s rejected: %+v", cmd.Type, decision.Rejections)
	}
	return next, decision
}

func eventTypes(events []event.Event) []event.Type {
	types := make([]event.Type, 0, len(events))
	for _, evt := range events {
		types = append(types, evt.Type)
	}
	return types
}

// roomWith builds a created room containing the given users.
func roomWith(users ...User) Room {
	state := Room{
		ID:         "room-1",
		Created:    true,
		Users:      map[string]User{},
		Stories:    map[string]Story{},
		CardConfig: DefaultDeck(),
	}
	for _, user := range users {
		state.Users[user.ID] = user
	}
	return state
}

func storyFixture(id string, createdAt int64) Story {
	return Story{ID: id, Title: "Story " + id, Estimations: map[string]float64{}, CreatedAt: createdAt}
}
