package room

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
)

func (d decider) joinRoom() command.Decision {
	existing, present := d.state.Users[d.cmd.UserID]
	if d.state.Created && present && !existing.Disconnected {
		return reject(RejectionCodeUserAlreadyJoined, "User already joined")
	}
	var payload JoinRoomPayload
	d.payload(&payload)

	deck := d.state.CardConfig
	if len(deck) == 0 {
		deck = DefaultDeck()
	}

	var events []event.Event
	if !d.state.Created {
		events = append(events, d.event(EventTypeRoomCreated, RoomCreatedPayload{CardConfig: deck}))
	}

	joining := User{ID: d.cmd.UserID, Visitor: payload.Visitor}
	if present {
		joining = existing
		joining.Disconnected = false
	}
	if username := normalizeUsername(payload.Username); username != "" {
		joining.Username = username
	}

	users := cloneUsers(d.state.Users)
	if users == nil {
		users = make(map[string]User, 1)
	}
	users[joining.ID] = joining
	stories := cloneStories(d.state.Stories)
	if stories == nil {
		stories = map[string]Story{}
	}

	events = append(events, d.event(EventTypeJoinedRoom, JoinedRoomPayload{
		UserID:        joining.ID,
		Users:         users,
		Stories:       stories,
		SelectedStory: d.state.SelectedStory,
		AutoReveal:    d.state.AutoReveal,
		CardConfig:    deck,
	}))
	return command.Accept(events...)
}

func (d decider) leaveRoom() command.Decision {
	if _, rejected := d.member(); rejected != nil {
		return *rejected
	}
	var payload LeaveRoomPayload
	d.payload(&payload)
	if payload.ConnectionLost {
		return command.Accept(d.event(EventTypeConnectionLost, UserRefPayload{UserID: d.cmd.UserID}))
	}
	return command.Accept(d.event(EventTypeLeftRoom, UserRefPayload{UserID: d.cmd.UserID}))
}

func (d decider) kick() command.Decision {
	actor, rejected := d.member()
	if rejected != nil {
		return *rejected
	}
	var payload UserRefPayload
	d.payload(&payload)
	targetID := strings.TrimSpace(payload.UserID)
	if targetID == actor.ID {
		return reject(RejectionCodeKickSelf, "User cannot kick himself!")
	}
	target, ok := d.state.Users[targetID]
	if !ok {
		return reject(RejectionCodeUserNotInRoom, "Can only kick users that are in the room")
	}
	if !target.Disconnected {
		return reject(RejectionCodeKickConnected, "Can only kick disconnected users!")
	}
	if actor.Visitor {
		return reject(RejectionCodeVisitorForbidden, "Visitors cannot kick other users!")
	}
	return command.Accept(d.event(EventTypeKicked, UserRefPayload{UserID: targetID}))
}

func (d decider) setUsername() command.Decision {
	if _, rejected := d.member(); rejected != nil {
		return *rejected
	}
	var payload SetUsernamePayload
	d.payload(&payload)
	username := normalizeUsername(payload.Username)
	if username == "" {
		return reject(RejectionCodeUsernameEmpty, "Username must not be empty")
	}
	return command.Accept(d.event(EventTypeUsernameSet, SetUsernamePayload{Username: username}))
}

func (d decider) toggleVisitor() command.Decision {
	user, rejected := d.member()
	if rejected != nil {
		return *rejected
	}
	if user.Visitor {
		return command.Accept(d.event(EventTypeVisitorUnset, EmptyPayload{}))
	}
	return command.Accept(d.event(EventTypeVisitorSet, EmptyPayload{}))
}

func (d decider) toggleExcluded() command.Decision {
	user, rejected := d.author("Visitors cannot be excluded")
	if rejected != nil {
		return *rejected
	}
	if user.Excluded {
		return command.Accept(d.event(EventTypeIncludedInEstimations, EmptyPayload{}))
	}
	return command.Accept(d.event(EventTypeExcludedFromEstimations, EmptyPayload{}))
}

func (d decider) toggleAutoReveal() command.Decision {
	if _, rejected := d.author("Visitors cannot toggle auto reveal!"); rejected != nil {
		return *rejected
	}
	if d.state.AutoReveal {
		return command.Accept(d.event(EventTypeAutoRevealOff, EmptyPayload{}))
	}
	return command.Accept(d.event(EventTypeAutoRevealOn, EmptyPayload{}))
}

func (d decider) setCardConfig() command.Decision {
	if _, rejected := d.author("Visitors cannot set the card configuration!"); rejected != nil {
		return *rejected
	}
	var payload CardConfigPayload
	d.payload(&payload)
	if err := ValidateDeck(payload.Cards); err != nil {
		return reject(RejectionCodeCardConfigInvalid, err.Error())
	}
	return command.Accept(d.event(EventTypeCardConfigSet, CardConfigPayload{Cards: payload.Cards}))
}

// normalizeUsername trims and NFC-normalizes a display name so the same name
// typed on different platforms compares equal.
func normalizeUsername(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
