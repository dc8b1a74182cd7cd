package room

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
)

// ErrEventTypeUnhandled indicates an event type with no fold case.
var ErrEventTypeUnhandled = errors.New("room fold does not handle event type")

// Fold applies an event to room state and returns the next snapshot.
//
// The input snapshot is never modified. Folding the same event onto the same
// snapshot always yields the same result.
func Fold(state Room, evt event.Event) (Room, error) {
	next := state.Clone()
	if next.Users == nil {
		next.Users = map[string]User{}
	}
	if next.Stories == nil {
		next.Stories = map[string]Story{}
	}

	switch evt.Type {
	case EventTypeRoomCreated:
		var payload RoomCreatedPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.ID = evt.RoomID
		next.Created = true
		if len(payload.CardConfig) > 0 {
			next.CardConfig = cloneCards(payload.CardConfig)
		}
	case EventTypeJoinedRoom:
		var payload JoinedRoomPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		userID := payloadUser(payload.UserID, evt)
		joining, ok := payload.Users[userID]
		if !ok {
			joining = User{}
		}
		joining.ID = userID
		joining.Disconnected = false
		next.ID = evt.RoomID
		next.Created = true
		next.Users[userID] = joining
	case EventTypeLeftRoom, EventTypeKicked:
		var payload UserRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.removeUser(payloadUser(payload.UserID, evt))
	case EventTypeConnectionLost:
		var payload UserRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		userID := payloadUser(payload.UserID, evt)
		next.updateUser(userID, func(u *User) { u.Disconnected = true })
	case EventTypeUsernameSet:
		var payload SetUsernamePayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.updateUser(evt.UserID, func(u *User) { u.Username = payload.Username })
	case EventTypeVisitorSet:
		next.updateUser(evt.UserID, func(u *User) { u.Visitor = true })
	case EventTypeVisitorUnset:
		next.updateUser(evt.UserID, func(u *User) { u.Visitor = false })
	case EventTypeExcludedFromEstimations:
		next.updateUser(evt.UserID, func(u *User) { u.Excluded = true })
	case EventTypeIncludedInEstimations:
		next.updateUser(evt.UserID, func(u *User) { u.Excluded = false })
	case EventTypeAutoRevealOn:
		next.AutoReveal = true
	case EventTypeAutoRevealOff:
		next.AutoReveal = false
	case EventTypeCardConfigSet:
		var payload CardConfigPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.CardConfig = cloneCards(payload.Cards)
	case EventTypeStoryAdded:
		var payload StoryAddedPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		estimations := make(map[string]float64, len(payload.Estimations))
		for userID, value := range payload.Estimations {
			estimations[userID] = value
		}
		next.Stories[payload.StoryID] = Story{
			ID:          payload.StoryID,
			Title:       payload.Title,
			Description: payload.Description,
			Estimations: estimations,
			CreatedAt:   payload.CreatedAt,
		}
	case EventTypeStoryChanged:
		var payload ChangeStoryPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.updateStory(payload.StoryID, func(s *Story) {
			s.Title = payload.Title
			s.Description = payload.Description
		})
	case EventTypeStoryTrashed:
		var payload StoryRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.updateStory(payload.StoryID, func(s *Story) { s.Trashed = true })
		if next.SelectedStory == payload.StoryID {
			next.SelectedStory = ""
		}
	case EventTypeStoryRestored:
		var payload StoryRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.updateStory(payload.StoryID, func(s *Story) { s.Trashed = false })
	case EventTypeStoryDeleted:
		var payload StoryRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		delete(next.Stories, payload.StoryID)
		if next.SelectedStory == payload.StoryID {
			next.SelectedStory = ""
		}
	case EventTypeStorySelected:
		var payload StoryRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		if _, ok := next.Stories[payload.StoryID]; ok || payload.StoryID == "" {
			next.SelectedStory = payload.StoryID
		}
	case EventTypeStoryEstimateGiven:
		var payload EstimatePayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.updateStory(payload.StoryID, func(s *Story) { s.Estimations[evt.UserID] = payload.Value })
	case EventTypeStoryEstimateCleared:
		var payload StoryRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.updateStory(payload.StoryID, func(s *Story) { delete(s.Estimations, evt.UserID) })
	case EventTypeRevealed:
		var payload RevealedPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.updateStory(payload.StoryID, func(s *Story) { s.Revealed = true })
	case EventTypeNewEstimationRoundStarted:
		var payload StoryRefPayload
		if err := decode(evt, &payload); err != nil {
			return state, err
		}
		next.updateStory(payload.StoryID, func(s *Story) {
			s.Estimations = map[string]float64{}
			s.Revealed = false
		})
	default:
		return state, fmt.Errorf("%w: %s", ErrEventTypeUnhandled, evt.Type)
	}
	return next, nil
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

func payloadUser(payloadUserID string, evt event.Event) string {
	if payloadUserID != "" {
		return payloadUserID
	}
	return evt.UserID
}

// removeUser drops a user and every estimation they gave.
func (r *Room) removeUser(userID string) {
	delete(r.Users, userID)
	for id, story := range r.Stories {
		if _, ok := story.Estimations[userID]; ok {
			delete(story.Estimations, userID)
			r.Stories[id] = story
		}
	}
}

func (r *Room) updateUser(userID string, apply func(*User)) {
	user, ok := r.Users[userID]
	if !ok {
		return
	}
	apply(&user)
	r.Users[userID] = user
}

func (r *Room) updateStory(storyID string, apply func(*Story)) {
	story, ok := r.Stories[storyID]
	if !ok {
		return
	}
	if story.Estimations == nil {
		story.Estimations = map[string]float64{}
	}
	apply(&story)
	r.Stories[storyID] = story
}
