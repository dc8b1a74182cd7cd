package room

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
)

const (
	CommandTypeJoinRoom           command.Type = "joinRoom"
	CommandTypeLeaveRoom          command.Type = "leaveRoom"
	CommandTypeKick               command.Type = "kick"
	CommandTypeSetUsername        command.Type = "setUsername"
	CommandTypeToggleVisitor      command.Type = "toggleVisitor"
	CommandTypeToggleExcluded     command.Type = "toggleExcluded"
	CommandTypeToggleAutoReveal   command.Type = "toggleAutoReveal"
	CommandTypeSetCardConfig      command.Type = "setCardConfig"
	CommandTypeAddStory           command.Type = "addStory"
	CommandTypeChangeStory        command.Type = "changeStory"
	CommandTypeTrashStory         command.Type = "trashStory"
	CommandTypeRestoreStory       command.Type = "restoreStory"
	CommandTypeDeleteStory        command.Type = "deleteStory"
	CommandTypeSelectStory        command.Type = "selectStory"
	CommandTypeGiveStoryEstimate  command.Type = "giveStoryEstimate"
	CommandTypeClearStoryEstimate command.Type = "clearStoryEstimate"
	CommandTypeReveal             command.Type = "reveal"
	CommandTypeNewEstimationRound command.Type = "newEstimationRound"

	EventTypeRoomCreated               event.Type = "roomCreated"
	EventTypeJoinedRoom                event.Type = "joinedRoom"
	EventTypeLeftRoom                  event.Type = "leftRoom"
	EventTypeConnectionLost            event.Type = "connectionLost"
	EventTypeKicked                    event.Type = "kicked"
	EventTypeUsernameSet               event.Type = "usernameSet"
	EventTypeVisitorSet                event.Type = "visitorSet"
	EventTypeVisitorUnset              event.Type = "visitorUnset"
	EventTypeExcludedFromEstimations   event.Type = "excludedFromEstimations"
	EventTypeIncludedInEstimations     event.Type = "includedInEstimations"
	EventTypeAutoRevealOn              event.Type = "autoRevealOn"
	EventTypeAutoRevealOff             event.Type = "autoRevealOff"
	EventTypeCardConfigSet             event.Type = "cardConfigSet"
	EventTypeStoryAdded                event.Type = "storyAdded"
	EventTypeStoryChanged              event.Type = "storyChanged"
	EventTypeStoryTrashed              event.Type = "storyTrashed"
	EventTypeStoryRestored             event.Type = "storyRestored"
	EventTypeStoryDeleted              event.Type = "storyDeleted"
	EventTypeStorySelected             event.Type = "storySelected"
	EventTypeStoryEstimateGiven        event.Type = "storyEstimateGiven"
	EventTypeStoryEstimateCleared      event.Type = "storyEstimateCleared"
	EventTypeRevealed                  event.Type = "revealed"
	EventTypeNewEstimationRoundStarted event.Type = "newEstimationRoundStarted"

	RejectionCodeUserAlreadyJoined      = "USER_ALREADY_JOINED"
	RejectionCodeUserNotInRoom          = "USER_NOT_IN_ROOM"
	RejectionCodeVisitorForbidden       = "VISITOR_FORBIDDEN"
	RejectionCodeKickSelf               = "KICK_SELF"
	RejectionCodeKickConnected          = "KICK_CONNECTED_USER"
	RejectionCodeUsernameEmpty          = "USERNAME_EMPTY"
	RejectionCodeCardConfigInvalid      = "CARD_CONFIG_INVALID"
	RejectionCodeStoryTitleEmpty        = "STORY_TITLE_EMPTY"
	RejectionCodeStoryNotFound          = "STORY_NOT_FOUND"
	RejectionCodeStoryTrashed           = "STORY_TRASHED"
	RejectionCodeStoryNotTrashed        = "STORY_NOT_TRASHED"
	RejectionCodeStoryNotSelected       = "STORY_NOT_SELECTED"
	RejectionCodeStoryRevealed          = "STORY_ALREADY_REVEALED"
	RejectionCodeUserExcluded           = "USER_EXCLUDED"
	RejectionCodeEstimateInvalid        = "ESTIMATE_VALUE_INVALID"
	RejectionCodeCommandTypeUnsupported = "COMMAND_TYPE_UNSUPPORTED"
)

// Decide returns the decision for a room command against current state.
//
// userID is always cmd.UserID, attached by the transport. newID supplies
// identifiers for stories created by the command; now stamps events.
func Decide(state Room, cmd command.Command, now func() time.Time, newID func() string) command.Decision {
	if now == nil {
		now = time.Now
	}
	d := decider{state: state, cmd: cmd, now: now().UTC(), newID: newID}

	switch cmd.Type {
	case CommandTypeJoinRoom:
		return d.joinRoom()
	case CommandTypeLeaveRoom:
		return d.leaveRoom()
	case CommandTypeKick:
		return d.kick()
	case CommandTypeSetUsername:
		return d.setUsername()
	case CommandTypeToggleVisitor:
		return d.toggleVisitor()
	case CommandTypeToggleExcluded:
		return d.toggleExcluded()
	case CommandTypeToggleAutoReveal:
		return d.toggleAutoReveal()
	case CommandTypeSetCardConfig:
		return d.setCardConfig()
	case CommandTypeAddStory:
		return d.addStory()
	case CommandTypeChangeStory:
		return d.changeStory()
	case CommandTypeTrashStory:
		return d.trashStory()
	case CommandTypeRestoreStory:
		return d.restoreStory()
	case CommandTypeDeleteStory:
		return d.deleteStory()
	case CommandTypeSelectStory:
		return d.selectStory()
	case CommandTypeGiveStoryEstimate:
		return d.giveStoryEstimate()
	case CommandTypeClearStoryEstimate:
		return d.clearStoryEstimate()
	case CommandTypeReveal:
		return d.reveal()
	case CommandTypeNewEstimationRound:
		return d.newEstimationRound()
	default:
		return reject(RejectionCodeCommandTypeUnsupported, "command type is not supported by room")
	}
}

type decider struct {
	state Room
	cmd   command.Command
	now   time.Time
	newID func() string
}

func reject(code, message string) command.Decision {
	return command.Reject(command.Rejection{Code: code, Message: message})
}

func (d decider) event(eventType event.Type, payload any) event.Event {
	payloadJSON, _ := json.Marshal(payload)
	return command.NewEvent(d.cmd, eventType, payloadJSON, d.now)
}

func (d decider) payload(target any) {
	_ = json.Unmarshal(d.cmd.PayloadJSON, target)
}

// member returns the acting user or a rejection when they are not in the room.
func (d decider) member() (User, *command.Decision) {
	user, ok := d.state.Users[d.cmd.UserID]
	if !ok {
		rejection := reject(RejectionCodeUserNotInRoom, "User is not in room")
		return User{}, &rejection
	}
	return user, nil
}

// author returns the acting user when they may author stories and estimates.
func (d decider) author(visitorMessage string) (User, *command.Decision) {
	user, rejected := d.member()
	if rejected != nil {
		return User{}, rejected
	}
	if user.Visitor {
		rejection := reject(RejectionCodeVisitorForbidden, visitorMessage)
		return User{}, &rejection
	}
	return user, nil
}

// story returns an existing story or a rejection.
func (d decider) story(storyID string) (Story, *command.Decision) {
	story, ok := d.state.Stories[strings.TrimSpace(storyID)]
	if !ok {
		rejection := reject(RejectionCodeStoryNotFound, "Story not found")
		return Story{}, &rejection
	}
	return story, nil
}

// activeStory returns an existing, non-trashed story or a rejection.
func (d decider) activeStory(storyID string) (Story, *command.Decision) {
	story, rejected := d.story(storyID)
	if rejected != nil {
		return Story{}, rejected
	}
	if story.Trashed {
		rejection := reject(RejectionCodeStoryTrashed, "Story is trashed")
		return Story{}, &rejection
	}
	return story, nil
}
