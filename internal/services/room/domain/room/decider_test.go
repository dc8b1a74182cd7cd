package room

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
)

func TestDecideJoinRoom_CreatesMissingRoom(t *testing.T) {
	cmd := newCommand(t, CommandTypeJoinRoom, "u1", JoinRoomPayload{Username: " tester1 "})
	state, decision := mustAccept(t, Blank("room-1", nil), cmd)

	want := []event.Type{EventTypeRoomCreated, EventTypeJoinedRoom}
	if got := eventTypes(decision.Events); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for _, evt := range decision.Events {
		if evt.CorrelationID != cmd.ID {
			t.Fatalf("correlation id = %q, want %q", evt.CorrelationID, cmd.ID)
		}
		if evt.UserID != "u1" || evt.RoomID != "room-1" {
			t.Fatalf("envelope = %+v", evt)
		}
		if !evt.Timestamp.Equal(fixedNow) {
			t.Fatalf("timestamp = %s, want %s", evt.Timestamp, fixedNow)
		}
	}
	if !state.Created || state.ID != "room-1" {
		t.Fatalf("room = %+v, want created room-1", state)
	}
	if state.Users["u1"].Username != "tester1" {
		t.Fatalf("username = %q, want tester1", state.Users["u1"].Username)
	}
	if len(state.CardConfig) != len(DefaultDeck()) {
		t.Fatalf("card config = %d cards, want default deck", len(state.CardConfig))
	}
}

func TestDecideJoinRoom_UsesSeededDeck(t *testing.T) {
	deck := []Card{{Label: "S", Value: 1}, {Label: "L", Value: 3}}
	cmd := newCommand(t, CommandTypeJoinRoom, "u1", nil)
	state, _ := mustAccept(t, Blank("room-1", deck), cmd)
	if !reflect.DeepEqual(state.CardConfig, deck) {
		t.Fatalf("card config = %+v, want %+v", state.CardConfig, deck)
	}
}

func TestDecideJoinRoom_ExistingRoomSnapshot(t *testing.T) {
	state := roomWith(User{ID: "u1", Username: "tester1"})
	state.Stories["s1"] = storyFixture("s1", 1)
	state.SelectedStory = "s1"

	cmd := newCommand(t, CommandTypeJoinRoom, "u2", JoinRoomPayload{Visitor: true})
	next, decision := mustAccept(t, state, cmd)
	if len(decision.Events) != 1 || decision.Events[0].Type != EventTypeJoinedRoom {
		t.Fatalf("events = %v, want [joinedRoom]", eventTypes(decision.Events))
	}
	var payload JoinedRoomPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.UserID != "u2" || payload.SelectedStory != "s1" {
		t.Fatalf("payload = %+v", payload)
	}
	if len(payload.Users) != 2 || len(payload.Stories) != 1 {
		t.Fatalf("snapshot users=%d stories=%d, want 2 and 1", len(payload.Users), len(payload.Stories))
	}
	if !next.Users["u2"].Visitor {
		t.Fatal("expected joining user to be a visitor")
	}
}

func TestDecideJoinRoom_RejectsConnectedDuplicate(t *testing.T) {
	state := roomWith(User{ID: "u1"})
	_, decision := apply(t, state, newCommand(t, CommandTypeJoinRoom, "u1", nil))
	assertRejected(t, decision, RejectionCodeUserAlreadyJoined, "User already joined")
}

func TestDecideJoinRoom_ReconnectsDisconnectedUser(t *testing.T) {
	state := roomWith(User{ID: "u1", Username: "tester1", Excluded: true, Disconnected: true})
	next, _ := mustAccept(t, state, newCommand(t, CommandTypeJoinRoom, "u1", nil))
	user := next.Users["u1"]
	if user.Disconnected {
		t.Fatal("expected user to be reconnected")
	}
	if user.Username != "tester1" || !user.Excluded {
		t.Fatalf("user = %+v, want preserved attributes", user)
	}
}

func TestDecideLeaveRoom(t *testing.T) {
	state := roomWith(User{ID: "u1"}, User{ID: "u2"})
	_, decision := mustAccept(t, state, newCommand(t, CommandTypeLeaveRoom, "u1", nil))
	if decision.Events[0].Type != EventTypeLeftRoom {
		t.Fatalf("event = %s, want leftRoom", decision.Events[0].Type)
	}

	next, decision := mustAccept(t, state, newCommand(t, CommandTypeLeaveRoom, "u1", LeaveRoomPayload{ConnectionLost: true}))
	if decision.Events[0].Type != EventTypeConnectionLost {
		t.Fatalf("event = %s, want connectionLost", decision.Events[0].Type)
	}
	if !next.Users["u1"].Disconnected {
		t.Fatal("expected user to be disconnected")
	}

	_, decision = apply(t, state, newCommand(t, CommandTypeLeaveRoom, "stranger", nil))
	assertRejected(t, decision, RejectionCodeUserNotInRoom, "User is not in room")
}

func TestDecideKick(t *testing.T) {
	state := roomWith(
		User{ID: "u1"},
		User{ID: "u2", Disconnected: true},
		User{ID: "u3"},
		User{ID: "v1", Visitor: true},
	)
	state.Stories["s1"] = Story{ID: "s1", Estimations: map[string]float64{"u2": 5}}

	tests := []struct {
		name    string
		actor   string
		target  string
		code    string
		message string
	}{
		{name: "self", actor: "u1", target: "u1", code: RejectionCodeKickSelf, message: "User cannot kick himself!"},
		{name: "connected target", actor: "u1", target: "u3", code: RejectionCodeKickConnected, message: "Can only kick disconnected users!"},
		{name: "visitor actor", actor: "v1", target: "u2", code: RejectionCodeVisitorForbidden, message: "Visitors cannot kick other users!"},
		{name: "unknown target", actor: "u1", target: "ghost", code: RejectionCodeUserNotInRoom},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, decision := apply(t, state, newCommand(t, CommandTypeKick, tc.actor, UserRefPayload{UserID: tc.target}))
			assertRejected(t, decision, tc.code, tc.message)
		})
	}

	next, decision := mustAccept(t, state, newCommand(t, CommandTypeKick, "u1", UserRefPayload{UserID: "u2"}))
	if decision.Events[0].Type != EventTypeKicked || decision.Events[0].UserID != "u1" {
		t.Fatalf("event = %+v, want kicked by u1", decision.Events[0])
	}
	if next.HasUser("u2") {
		t.Fatal("expected kicked user to be removed")
	}
	if len(next.Stories["s1"].Estimations) != 0 {
		t.Fatalf("estimations = %v, want empty", next.Stories["s1"].Estimations)
	}
}

func TestDecideUserToggles(t *testing.T) {
	state := roomWith(User{ID: "u1"})

	state, decision := mustAccept(t, state, newCommand(t, CommandTypeSetUsername, "u1", SetUsernamePayload{Username: " Jim "}))
	if state.Users["u1"].Username != "Jim" {
		t.Fatalf("username = %q, want Jim", state.Users["u1"].Username)
	}
	_, decision = apply(t, state, newCommand(t, CommandTypeSetUsername, "u1", SetUsernamePayload{Username: "  "}))
	assertRejected(t, decision, RejectionCodeUsernameEmpty, "")

	state, _ = mustAccept(t, state, newCommand(t, CommandTypeToggleExcluded, "u1", nil))
	if !state.Users["u1"].Excluded {
		t.Fatal("expected user excluded")
	}
	state, _ = mustAccept(t, state, newCommand(t, CommandTypeToggleExcluded, "u1", nil))
	if state.Users["u1"].Excluded {
		t.Fatal("expected user included")
	}

	state, _ = mustAccept(t, state, newCommand(t, CommandTypeToggleAutoReveal, "u1", nil))
	if !state.AutoReveal {
		t.Fatal("expected auto reveal on")
	}

	state, _ = mustAccept(t, state, newCommand(t, CommandTypeToggleVisitor, "u1", nil))
	if !state.Users["u1"].Visitor {
		t.Fatal("expected visitor")
	}
	_, decision = apply(t, state, newCommand(t, CommandTypeToggleExcluded, "u1", nil))
	assertRejected(t, decision, RejectionCodeVisitorForbidden, "Visitors cannot be excluded")
	_, decision = apply(t, state, newCommand(t, CommandTypeToggleAutoReveal, "u1", nil))
	assertRejected(t, decision, RejectionCodeVisitorForbidden, "")

	state, _ = mustAccept(t, state, newCommand(t, CommandTypeToggleVisitor, "u1", nil))
	if state.Users["u1"].Visitor {
		t.Fatal("expected visitor flag cleared")
	}
}

func TestDecideSetUsername_NormalizesComposition(t *testing.T) {
	state := roomWith(User{ID: "u1"})
	state, _ = mustAccept(t, state, newCommand(t, CommandTypeSetUsername, "u1", SetUsernamePayload{Username: "Jose\u0301"}))
	if got := state.Users["u1"].Username; got != "Jos\u00e9" {
		t.Fatalf("username = %q, want %q", got, "Jos\u00e9")
	}
}

func TestDecideSetCardConfig(t *testing.T) {
	state := roomWith(User{ID: "u1"}, User{ID: "v1", Visitor: true})
	cards := []Card{{Label: "S", Value: 1}, {Label: "M", Value: 2}}

	next, _ := mustAccept(t, state, newCommand(t, CommandTypeSetCardConfig, "u1", CardConfigPayload{Cards: cards}))
	if !reflect.DeepEqual(next.CardConfig, cards) {
		t.Fatalf("card config = %+v, want %+v", next.CardConfig, cards)
	}

	_, decision := apply(t, state, newCommand(t, CommandTypeSetCardConfig, "u1", CardConfigPayload{}))
	assertRejected(t, decision, RejectionCodeCardConfigInvalid, "")

	dup := []Card{{Label: "a", Value: 1}, {Label: "b", Value: 1}}
	_, decision = apply(t, state, newCommand(t, CommandTypeSetCardConfig, "u1", CardConfigPayload{Cards: dup}))
	assertRejected(t, decision, RejectionCodeCardConfigInvalid, "")

	_, decision = apply(t, state, newCommand(t, CommandTypeSetCardConfig, "v1", CardConfigPayload{Cards: cards}))
	assertRejected(t, decision, RejectionCodeVisitorForbidden, "")
}

func TestDecideAddStory_FirstStoryAutoSelects(t *testing.T) {
	state := roomWith(User{ID: "u1"})
	next, decision := mustAccept(t, state, newCommand(t, CommandTypeAddStory, "u1", AddStoryPayload{Title: "Login", Description: "oauth"}))

	want := []event.Type{EventTypeStoryAdded, EventTypeStorySelected}
	if got := eventTypes(decision.Events); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	var added StoryAddedPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &added); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if added.StoryID != "story-1" || added.Title != "Login" || added.CreatedAt != fixedNow.UnixMilli() {
		t.Fatalf("payload = %+v", added)
	}
	if added.Estimations == nil || len(added.Estimations) != 0 {
		t.Fatalf("estimations = %v, want empty map", added.Estimations)
	}
	if next.SelectedStory != added.StoryID {
		t.Fatalf("selected story = %q, want %q", next.SelectedStory, added.StoryID)
	}
}

func TestDecideAddStory_NonFirstStoryKeepsSelection(t *testing.T) {
	state := roomWith(User{ID: "u1"})
	state.Stories["s1"] = storyFixture("s1", 1)
	state.SelectedStory = "s1"

	next, decision := mustAccept(t, state, newCommand(t, CommandTypeAddStory, "u1", AddStoryPayload{Title: "Second"}))
	if got := eventTypes(decision.Events); !reflect.DeepEqual(got, []event.Type{EventTypeStoryAdded}) {
		t.Fatalf("events = %v, want [storyAdded]", got)
	}
	if next.SelectedStory != "s1" {
		t.Fatalf("selected story = %q, want s1", next.SelectedStory)
	}
	if len(next.Stories) != 2 {
		t.Fatalf("stories = %d, want 2", len(next.Stories))
	}
}

func TestDecideAddStory_TrashedOnlyRoomKeepsSelection(t *testing.T) {
	state := roomWith(User{ID: "u1"})
	trashed := storyFixture("s1", 1)
	trashed.Trashed = true
	state.Stories["s1"] = trashed

	next, decision := mustAccept(t, state, newCommand(t, CommandTypeAddStory, "u1", AddStoryPayload{Title: "Second"}))
	if got := eventTypes(decision.Events); !reflect.DeepEqual(got, []event.Type{EventTypeStoryAdded}) {
		t.Fatalf("events = %v, want [storyAdded]", got)
	}
	if next.SelectedStory != "" {
		t.Fatalf("selected story = %q, want empty", next.SelectedStory)
	}
	if len(next.Stories) != 2 {
		t.Fatalf("stories = %d, want 2", len(next.Stories))
	}
}

func TestDecideAddStory_VisitorRejected(t *testing.T) {
	state := roomWith(User{ID: "v1", Visitor: true})
	before := state.Clone()

	next, decision := apply(t, state, newCommand(t, CommandTypeAddStory, "v1", AddStoryPayload{Title: "nope"}))
	if len(decision.Events) != 0 {
		t.Fatalf("events = %d, want 0", len(decision.Events))
	}
	assertRejected(t, decision, RejectionCodeVisitorForbidden, "Visitors cannot add stories")
	if !reflect.DeepEqual(next, before) || !reflect.DeepEqual(state, before) {
		t.Fatal("expected rejected command to leave state unchanged")
	}
}

func TestDecideAddStory_RequiresTitleAndMembership(t *testing.T) {
	state := roomWith(User{ID: "u1"})
	_, decision := apply(t, state, newCommand(t, CommandTypeAddStory, "u1", AddStoryPayload{Title: " "}))
	assertRejected(t, decision, RejectionCodeStoryTitleEmpty, "")

	_, decision = apply(t, state, newCommand(t, CommandTypeAddStory, "stranger", AddStoryPayload{Title: "x"}))
	assertRejected(t, decision, RejectionCodeUserNotInRoom, "")
}

func TestDecideStoryLifecycle(t *testing.T) {
	state := roomWith(User{ID: "u1"}, User{ID: "v1", Visitor: true})
	state.Stories["s1"] = storyFixture("s1", 1)
	state.Stories["s2"] = storyFixture("s2", 2)
	state.SelectedStory = "s1"

	_, decision := apply(t, state, newCommand(t, CommandTypeChangeStory, "v1", ChangeStoryPayload{StoryID: "s1", Title: "x"}))
	assertRejected(t, decision, RejectionCodeVisitorForbidden, "Visitors cannot change stories!")

	state, _ = mustAccept(t, state, newCommand(t, CommandTypeChangeStory, "u1", ChangeStoryPayload{StoryID: "s1", Title: "Renamed", Description: "d"}))
	if state.Stories["s1"].Title != "Renamed" || state.Stories["s1"].Description != "d" {
		t.Fatalf("story = %+v", state.Stories["s1"])
	}

	_, decision = apply(t, state, newCommand(t, CommandTypeDeleteStory, "u1", StoryRefPayload{StoryID: "s1"}))
	assertRejected(t, decision, RejectionCodeStoryNotTrashed, "Only trashed stories can be deleted")

	state, decision = mustAccept(t, state, newCommand(t, CommandTypeTrashStory, "u1", StoryRefPayload{StoryID: "s1"}))
	if got := eventTypes(decision.Events); !reflect.DeepEqual(got, []event.Type{EventTypeStoryTrashed, EventTypeStorySelected}) {
		t.Fatalf("events = %v", got)
	}
	if state.SelectedStory != "s2" {
		t.Fatalf("selected story = %q, want s2", state.SelectedStory)
	}

	_, decision = apply(t, state, newCommand(t, CommandTypeSelectStory, "u1", StoryRefPayload{StoryID: "s1"}))
	assertRejected(t, decision, RejectionCodeStoryTrashed, "")

	state, _ = mustAccept(t, state, newCommand(t, CommandTypeRestoreStory, "u1", StoryRefPayload{StoryID: "s1"}))
	if state.Stories["s1"].Trashed {
		t.Fatal("expected story restored")
	}
	_, decision = apply(t, state, newCommand(t, CommandTypeRestoreStory, "u1", StoryRefPayload{StoryID: "s1"}))
	assertRejected(t, decision, RejectionCodeStoryNotTrashed, "")

	state, _ = mustAccept(t, state, newCommand(t, CommandTypeTrashStory, "u1", StoryRefPayload{StoryID: "s1"}))
	state, _ = mustAccept(t, state, newCommand(t, CommandTypeDeleteStory, "u1", StoryRefPayload{StoryID: "s1"}))
	if _, ok := state.Stories["s1"]; ok {
		t.Fatal("expected story deleted")
	}

	_, decision = apply(t, state, newCommand(t, CommandTypeSelectStory, "u1", StoryRefPayload{StoryID: "missing"}))
	assertRejected(t, decision, RejectionCodeStoryNotFound, "")
}

func TestDecideTrashLastSelectedStoryClearsSelection(t *testing.T) {
	state := roomWith(User{ID: "u1"})
	state.Stories["s1"] = storyFixture("s1", 1)
	state.SelectedStory = "s1"

	next, decision := mustAccept(t, state, newCommand(t, CommandTypeTrashStory, "u1", StoryRefPayload{StoryID: "s1"}))
	var selected StoryRefPayload
	if err := json.Unmarshal(decision.Events[1].PayloadJSON, &selected); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if selected.StoryID != "" || next.SelectedStory != "" {
		t.Fatalf("selected = %q / %q, want empty", selected.StoryID, next.SelectedStory)
	}
}

func TestDecideSelectStory(t *testing.T) {
	state := roomWith(User{ID: "u1"}, User{ID: "v1", Visitor: true})
	state.Stories["s1"] = storyFixture("s1", 1)
	state.Stories["s2"] = storyFixture("s2", 2)
	state.SelectedStory = "s1"

	_, decision := apply(t, state, newCommand(t, CommandTypeSelectStory, "v1", StoryRefPayload{StoryID: "s2"}))
	assertRejected(t, decision, RejectionCodeVisitorForbidden, "Visitors cannot select current story!")

	next, _ := mustAccept(t, state, newCommand(t, CommandTypeSelectStory, "u1", StoryRefPayload{StoryID: "s2"}))
	if next.SelectedStory != "s2" {
		t.Fatalf("selected story = %q, want s2", next.SelectedStory)
	}
}

func TestDecideGiveStoryEstimate(t *testing.T) {
	state := roomWith(User{ID: "u1"}, User{ID: "u2"}, User{ID: "x1", Excluded: true}, User{ID: "v1", Visitor: true})
	state.Stories["s1"] = storyFixture("s1", 1)
	state.Stories["s2"] = storyFixture("s2", 2)
	state.SelectedStory = "s1"

	_, decision := apply(t, state, newCommand(t, CommandTypeGiveStoryEstimate, "v1", EstimatePayload{StoryID: "s1", Value: 3}))
	assertRejected(t, decision, RejectionCodeVisitorForbidden, "Visitors cannot give estimations!")

	_, decision = apply(t, state, newCommand(t, CommandTypeGiveStoryEstimate, "x1", EstimatePayload{StoryID: "s1", Value: 3}))
	assertRejected(t, decision, RejectionCodeUserExcluded, "")

	_, decision = apply(t, state, newCommand(t, CommandTypeGiveStoryEstimate, "u1", EstimatePayload{StoryID: "s2", Value: 3}))
	assertRejected(t, decision, RejectionCodeStoryNotSelected, "Can only give estimation for currently selected story!")

	_, decision = apply(t, state, newCommand(t, CommandTypeGiveStoryEstimate, "u1", EstimatePayload{StoryID: "s1", Value: 4}))
	assertRejected(t, decision, RejectionCodeEstimateInvalid, "")

	next, decision := mustAccept(t, state, newCommand(t, CommandTypeGiveStoryEstimate, "u1", EstimatePayload{StoryID: "s1", Value: 3}))
	if len(decision.Events) != 1 {
		t.Fatalf("events = %v, want only storyEstimateGiven", eventTypes(decision.Events))
	}
	if next.Stories["s1"].Estimations["u1"] != 3 {
		t.Fatalf("estimation = %v, want 3", next.Stories["s1"].Estimations["u1"])
	}

	next, _ = mustAccept(t, next, newCommand(t, CommandTypeClearStoryEstimate, "u1", StoryRefPayload{StoryID: "s1"}))
	if _, ok := next.Stories["s1"].Estimations["u1"]; ok {
		t.Fatal("expected estimation cleared")
	}
}

func TestDecideGiveStoryEstimate_AutoReveal(t *testing.T) {
	state := roomWith(User{ID: "u1"}, User{ID: "u2"}, User{ID: "v1", Visitor: true}, User{ID: "gone", Disconnected: true})
	state.AutoReveal = true
	state.Stories["s1"] = storyFixture("s1", 1)
	state.SelectedStory = "s1"

	state, decision := mustAccept(t, state, newCommand(t, CommandTypeGiveStoryEstimate, "u1", EstimatePayload{StoryID: "s1", Value: 5}))
	if len(decision.Events) != 1 {
		t.Fatalf("events = %v, want no reveal yet", eventTypes(decision.Events))
	}

	state, decision = mustAccept(t, state, newCommand(t, CommandTypeGiveStoryEstimate, "u2", EstimatePayload{StoryID: "s1", Value: 8}))
	want := []event.Type{EventTypeStoryEstimateGiven, EventTypeRevealed}
	if got := eventTypes(decision.Events); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	var revealed RevealedPayload
	if err := json.Unmarshal(decision.Events[1].PayloadJSON, &revealed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if revealed.Manually {
		t.Fatal("expected automatic reveal")
	}
	if !state.Stories["s1"].Revealed {
		t.Fatal("expected story revealed")
	}

	_, decision = apply(t, state, newCommand(t, CommandTypeGiveStoryEstimate, "u1", EstimatePayload{StoryID: "s1", Value: 3}))
	assertRejected(t, decision, RejectionCodeStoryRevealed, "")
}

func TestDecideRevealAndNewRound(t *testing.T) {
	state := roomWith(User{ID: "u1"}, User{ID: "v1", Visitor: true})
	story := storyFixture("s1", 1)
	story.Estimations["u1"] = 2
	state.Stories["s1"] = story
	state.SelectedStory = "s1"

	_, decision := apply(t, state, newCommand(t, CommandTypeReveal, "v1", StoryRefPayload{StoryID: "s1"}))
	assertRejected(t, decision, RejectionCodeVisitorForbidden, "Visitors cannot reveal stories!")

	state, decision = mustAccept(t, state, newCommand(t, CommandTypeReveal, "u1", StoryRefPayload{StoryID: "s1"}))
	var revealed RevealedPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &revealed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !revealed.Manually {
		t.Fatal("expected manual reveal")
	}

	_, decision = apply(t, state, newCommand(t, CommandTypeReveal, "u1", StoryRefPayload{StoryID: "s1"}))
	assertRejected(t, decision, RejectionCodeStoryRevealed, "Story is already revealed")

	state, _ = mustAccept(t, state, newCommand(t, CommandTypeNewEstimationRound, "u1", StoryRefPayload{StoryID: "s1"}))
	if state.Stories["s1"].Revealed || len(state.Stories["s1"].Estimations) != 0 {
		t.Fatalf("story = %+v, want fresh round", state.Stories["s1"])
	}
}

func TestDecideUnsupportedCommand(t *testing.T) {
	decision := Decide(roomWith(User{ID: "u1"}), newCommand(t, command.Type("fly"), "u1", nil), clock, nil)
	assertRejected(t, decision, RejectionCodeCommandTypeUnsupported, "")
}

func assertRejected(t *testing.T, decision command.Decision, code, message string) {
	t.Helper()
	if len(decision.Rejections) != 1 {
		t.Fatalf("rejections = %d, want 1 (events %v)", len(decision.Rejections), eventTypes(decision.Events))
	}
	if len(decision.Events) != 0 {
		t.Fatalf("events = %d, want 0", len(decision.Events))
	}
	got := decision.Rejections[0]
	if got.Code != code {
		t.Fatalf("rejection code = %s, want %s (%s)", got.Code, code, got.Message)
	}
	if message != "" && !strings.Contains(got.Message, message) {
		t.Fatalf("rejection message = %q, want it to contain %q", got.Message, message)
	}
}
