package room

import (
	"strings"

	"github.com/louisbranch/pointing.space/internal/platform/id"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
)

func (d decider) addStory() command.Decision {
	if _, rejected := d.author("Visitors cannot add stories!"); rejected != nil {
		return *rejected
	}
	var payload AddStoryPayload
	d.payload(&payload)
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return reject(RejectionCodeStoryTitleEmpty, "Story title must not be empty")
	}
	newID := d.newID
	if newID == nil {
		newID = id.MustNewID
	}
	storyID := newID()

	added := d.event(EventTypeStoryAdded, StoryAddedPayload{
		StoryID:     storyID,
		Title:       title,
		Description: strings.TrimSpace(payload.Description),
		Estimations: map[string]float64{},
		CreatedAt:   d.now.UnixMilli(),
	})
	// Trashed stories count: only a room that never had a story auto-selects.
	if len(d.state.Stories) > 0 {
		return command.Accept(added)
	}
	return command.Accept(added, d.event(EventTypeStorySelected, StoryRefPayload{StoryID: storyID}))
}

func (d decider) changeStory() command.Decision {
	if _, rejected := d.author("Visitors cannot change stories!"); rejected != nil {
		return *rejected
	}
	var payload ChangeStoryPayload
	d.payload(&payload)
	story, rejected := d.activeStory(payload.StoryID)
	if rejected != nil {
		return *rejected
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return reject(RejectionCodeStoryTitleEmpty, "Story title must not be empty")
	}
	return command.Accept(d.event(EventTypeStoryChanged, ChangeStoryPayload{
		StoryID:     story.ID,
		Title:       title,
		Description: strings.TrimSpace(payload.Description),
	}))
}

func (d decider) trashStory() command.Decision {
	if _, rejected := d.author("Visitors cannot trash stories!"); rejected != nil {
		return *rejected
	}
	var payload StoryRefPayload
	d.payload(&payload)
	story, rejected := d.activeStory(payload.StoryID)
	if rejected != nil {
		return *rejected
	}
	trashed := d.event(EventTypeStoryTrashed, StoryRefPayload{StoryID: story.ID})
	if d.state.SelectedStory != story.ID {
		return command.Accept(trashed)
	}
	next := ""
	for _, storyID := range d.state.ActiveStoryIDs() {
		if storyID != story.ID {
			next = storyID
			break
		}
	}
	return command.Accept(trashed, d.event(EventTypeStorySelected, StoryRefPayload{StoryID: next}))
}

func (d decider) restoreStory() command.Decision {
	if _, rejected := d.author("Visitors cannot restore stories!"); rejected != nil {
		return *rejected
	}
	var payload StoryRefPayload
	d.payload(&payload)
	story, rejected := d.story(payload.StoryID)
	if rejected != nil {
		return *rejected
	}
	if !story.Trashed {
		return reject(RejectionCodeStoryNotTrashed, "Only trashed stories can be restored")
	}
	return command.Accept(d.event(EventTypeStoryRestored, StoryRefPayload{StoryID: story.ID}))
}

func (d decider) deleteStory() command.Decision {
	if _, rejected := d.author("Visitors cannot delete stories!"); rejected != nil {
		return *rejected
	}
	var payload StoryRefPayload
	d.payload(&payload)
	story, rejected := d.story(payload.StoryID)
	if rejected != nil {
		return *rejected
	}
	if !story.Trashed {
		return reject(RejectionCodeStoryNotTrashed, "Only trashed stories can be deleted")
	}
	return command.Accept(d.event(EventTypeStoryDeleted, StoryRefPayload{StoryID: story.ID}))
}

func (d decider) selectStory() command.Decision {
	if _, rejected := d.author("Visitors cannot select current story!"); rejected != nil {
		return *rejected
	}
	var payload StoryRefPayload
	d.payload(&payload)
	story, rejected := d.activeStory(payload.StoryID)
	if rejected != nil {
		return *rejected
	}
	return command.Accept(d.event(EventTypeStorySelected, StoryRefPayload{StoryID: story.ID}))
}

func (d decider) giveStoryEstimate() command.Decision {
	user, rejected := d.author("Visitors cannot give estimations!")
	if rejected != nil {
		return *rejected
	}
	if user.Excluded {
		return reject(RejectionCodeUserExcluded, "Excluded users cannot give estimations!")
	}
	var payload EstimatePayload
	d.payload(&payload)
	story, rejected := d.selectedStory(payload.StoryID, "Can only give estimation for currently selected story!")
	if rejected != nil {
		return *rejected
	}
	if story.Revealed {
		return reject(RejectionCodeStoryRevealed, "You cannot give an estimate for a story that was revealed!")
	}
	deck := d.state.CardConfig
	if len(deck) == 0 {
		deck = DefaultDeck()
	}
	if !deckHasValue(deck, payload.Value) {
		return reject(RejectionCodeEstimateInvalid, "Estimation value is not part of the card configuration")
	}

	given := d.event(EventTypeStoryEstimateGiven, EstimatePayload{StoryID: story.ID, Value: payload.Value})
	if !d.state.AutoReveal {
		return command.Accept(given)
	}
	for _, userID := range d.state.EstimatingUserIDs() {
		if userID == user.ID {
			continue
		}
		if _, ok := story.Estimations[userID]; !ok {
			return command.Accept(given)
		}
	}
	return command.Accept(given, d.event(EventTypeRevealed, RevealedPayload{StoryID: story.ID, Manually: false}))
}

func (d decider) clearStoryEstimate() command.Decision {
	if _, rejected := d.author("Visitors cannot clear estimations!"); rejected != nil {
		return *rejected
	}
	var payload StoryRefPayload
	d.payload(&payload)
	story, rejected := d.selectedStory(payload.StoryID, "Can only clear estimation for currently selected story!")
	if rejected != nil {
		return *rejected
	}
	if story.Revealed {
		return reject(RejectionCodeStoryRevealed, "You cannot clear your estimate for a story that was revealed!")
	}
	return command.Accept(d.event(EventTypeStoryEstimateCleared, StoryRefPayload{StoryID: story.ID}))
}

func (d decider) reveal() command.Decision {
	if _, rejected := d.author("Visitors cannot reveal stories!"); rejected != nil {
		return *rejected
	}
	var payload StoryRefPayload
	d.payload(&payload)
	story, rejected := d.activeStory(payload.StoryID)
	if rejected != nil {
		return *rejected
	}
	if story.Revealed {
		return reject(RejectionCodeStoryRevealed, "Story is already revealed")
	}
	return command.Accept(d.event(EventTypeRevealed, RevealedPayload{StoryID: story.ID, Manually: true}))
}

func (d decider) newEstimationRound() command.Decision {
	if _, rejected := d.author("Visitors cannot start a new estimation round!"); rejected != nil {
		return *rejected
	}
	var payload StoryRefPayload
	d.payload(&payload)
	story, rejected := d.activeStory(payload.StoryID)
	if rejected != nil {
		return *rejected
	}
	return command.Accept(d.event(EventTypeNewEstimationRoundStarted, StoryRefPayload{StoryID: story.ID}))
}

// selectedStory returns the story only when it is the room's current selection.
func (d decider) selectedStory(storyID, message string) (Story, *command.Decision) {
	storyID = strings.TrimSpace(storyID)
	if storyID == "" || storyID != d.state.SelectedStory {
		rejection := reject(RejectionCodeStoryNotSelected, message)
		return Story{}, &rejection
	}
	return d.activeStory(storyID)
}
