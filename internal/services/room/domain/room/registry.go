package room

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
)

var (
	errStoryIDRequired = errors.New("storyId is required")
	errUserIDRequired  = errors.New("userId is required")
)

var commandDefinitions = []command.Definition{
	{Type: CommandTypeJoinRoom, AllowMissingRoom: true, ValidatePayload: shape[JoinRoomPayload]},
	{Type: CommandTypeLeaveRoom, ValidatePayload: shape[LeaveRoomPayload]},
	{Type: CommandTypeKick, ValidatePayload: validateUserRef},
	{Type: CommandTypeSetUsername, ValidatePayload: shape[SetUsernamePayload]},
	{Type: CommandTypeToggleVisitor, ValidatePayload: shape[EmptyPayload]},
	{Type: CommandTypeToggleExcluded, ValidatePayload: shape[EmptyPayload]},
	{Type: CommandTypeToggleAutoReveal, ValidatePayload: shape[EmptyPayload]},
	{Type: CommandTypeSetCardConfig, ValidatePayload: shape[CardConfigPayload]},
	{Type: CommandTypeAddStory, ValidatePayload: shape[AddStoryPayload]},
	{Type: CommandTypeChangeStory, ValidatePayload: validateChangeStory},
	{Type: CommandTypeTrashStory, ValidatePayload: validateStoryRef},
	{Type: CommandTypeRestoreStory, ValidatePayload: validateStoryRef},
	{Type: CommandTypeDeleteStory, ValidatePayload: validateStoryRef},
	{Type: CommandTypeSelectStory, ValidatePayload: validateStoryRef},
	{Type: CommandTypeGiveStoryEstimate, ValidatePayload: validateEstimate},
	{Type: CommandTypeClearStoryEstimate, ValidatePayload: validateStoryRef},
	{Type: CommandTypeReveal, ValidatePayload: validateStoryRef},
	{Type: CommandTypeNewEstimationRound, ValidatePayload: validateStoryRef},
}

var eventDefinitions = []event.Definition{
	{Type: EventTypeRoomCreated, ValidatePayload: shape[RoomCreatedPayload]},
	{Type: EventTypeJoinedRoom, ValidatePayload: validateJoinedRoom},
	{Type: EventTypeLeftRoom, ValidatePayload: validateUserRef},
	{Type: EventTypeConnectionLost, ValidatePayload: validateUserRef},
	{Type: EventTypeKicked, ValidatePayload: validateUserRef},
	{Type: EventTypeUsernameSet, ValidatePayload: shape[SetUsernamePayload]},
	{Type: EventTypeVisitorSet, ValidatePayload: shape[EmptyPayload]},
	{Type: EventTypeVisitorUnset, ValidatePayload: shape[EmptyPayload]},
	{Type: EventTypeExcludedFromEstimations, ValidatePayload: shape[EmptyPayload]},
	{Type: EventTypeIncludedInEstimations, ValidatePayload: shape[EmptyPayload]},
	{Type: EventTypeAutoRevealOn, ValidatePayload: shape[EmptyPayload]},
	{Type: EventTypeAutoRevealOff, ValidatePayload: shape[EmptyPayload]},
	{Type: EventTypeCardConfigSet, ValidatePayload: validateCardConfig},
	{Type: EventTypeStoryAdded, ValidatePayload: validateStoryAdded},
	{Type: EventTypeStoryChanged, ValidatePayload: validateChangeStory},
	{Type: EventTypeStoryTrashed, ValidatePayload: validateStoryRef},
	{Type: EventTypeStoryRestored, ValidatePayload: validateStoryRef},
	{Type: EventTypeStoryDeleted, ValidatePayload: validateStoryRef},
	// An empty storyId clears the selection.
	{Type: EventTypeStorySelected, ValidatePayload: shape[StoryRefPayload]},
	{Type: EventTypeStoryEstimateGiven, ValidatePayload: validateEstimate},
	{Type: EventTypeStoryEstimateCleared, ValidatePayload: validateStoryRef},
	{Type: EventTypeRevealed, ValidatePayload: validateRevealed},
	{Type: EventTypeNewEstimationRoundStarted, ValidatePayload: validateStoryRef},
}

// RegisterCommands registers room commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	for _, def := range commandDefinitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers room events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	for _, def := range eventDefinitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// DeciderHandledCommands returns the command types Decide handles.
func DeciderHandledCommands() []command.Type {
	return []command.Type{
		CommandTypeJoinRoom,
		CommandTypeLeaveRoom,
		CommandTypeKick,
		CommandTypeSetUsername,
		CommandTypeToggleVisitor,
		CommandTypeToggleExcluded,
		CommandTypeToggleAutoReveal,
		CommandTypeSetCardConfig,
		CommandTypeAddStory,
		CommandTypeChangeStory,
		CommandTypeTrashStory,
		CommandTypeRestoreStory,
		CommandTypeDeleteStory,
		CommandTypeSelectStory,
		CommandTypeGiveStoryEstimate,
		CommandTypeClearStoryEstimate,
		CommandTypeReveal,
		CommandTypeNewEstimationRound,
	}
}

// FoldHandledTypes returns the event types Fold handles.
func FoldHandledTypes() []event.Type {
	return EmittableEventTypes()
}

// EmittableEventTypes returns all event types the room decider can emit.
func EmittableEventTypes() []event.Type {
	return []event.Type{
		EventTypeRoomCreated,
		EventTypeJoinedRoom,
		EventTypeLeftRoom,
		EventTypeConnectionLost,
		EventTypeKicked,
		EventTypeUsernameSet,
		EventTypeVisitorSet,
		EventTypeVisitorUnset,
		EventTypeExcludedFromEstimations,
		EventTypeIncludedInEstimations,
		EventTypeAutoRevealOn,
		EventTypeAutoRevealOff,
		EventTypeCardConfigSet,
		EventTypeStoryAdded,
		EventTypeStoryChanged,
		EventTypeStoryTrashed,
		EventTypeStoryRestored,
		EventTypeStoryDeleted,
		EventTypeStorySelected,
		EventTypeStoryEstimateGiven,
		EventTypeStoryEstimateCleared,
		EventTypeRevealed,
		EventTypeNewEstimationRoundStarted,
	}
}

// shape ensures a payload decodes into T.
func shape[T any](raw json.RawMessage) error {
	var payload T
	return json.Unmarshal(raw, &payload)
}

func validateUserRef(raw json.RawMessage) error {
	var payload UserRefPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.UserID) == "" {
		return errUserIDRequired
	}
	return nil
}

func validateStoryRef(raw json.RawMessage) error {
	var payload StoryRefPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.StoryID) == "" {
		return errStoryIDRequired
	}
	return nil
}

func validateChangeStory(raw json.RawMessage) error {
	var payload ChangeStoryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.StoryID) == "" {
		return errStoryIDRequired
	}
	return nil
}

func validateEstimate(raw json.RawMessage) error {
	var payload EstimatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.StoryID) == "" {
		return errStoryIDRequired
	}
	return nil
}

func validateRevealed(raw json.RawMessage) error {
	var payload RevealedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.StoryID) == "" {
		return errStoryIDRequired
	}
	return nil
}

func validateStoryAdded(raw json.RawMessage) error {
	var payload StoryAddedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.StoryID) == "" {
		return errStoryIDRequired
	}
	return nil
}

func validateJoinedRoom(raw json.RawMessage) error {
	var payload JoinedRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.UserID) == "" {
		return errUserIDRequired
	}
	return nil
}

func validateCardConfig(raw json.RawMessage) error {
	var payload CardConfigPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return ValidateDeck(payload.Cards)
}
