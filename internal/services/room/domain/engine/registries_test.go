package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

func TestBuildRegistries(t *testing.T) {
	registries, err := BuildRegistries()
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}
	if got, want := len(registries.Commands.ListDefinitions()), len(room.DeciderHandledCommands()); got != want {
		t.Fatalf("commands = %d, want %d", got, want)
	}
	if got, want := len(registries.Events.ListDefinitions()), len(room.EmittableEventTypes()); got != want {
		t.Fatalf("events = %d, want %d", got, want)
	}
}

func TestValidateDeciderCoverage_ReportsMissingCase(t *testing.T) {
	commands := command.NewRegistry()
	for _, name := range []command.Type{"addStory", "paintStory"} {
		if err := commands.Register(command.Definition{Type: name}); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	err := ValidateDeciderCoverage(commands, []command.Type{"addStory"})
	if err == nil || !strings.Contains(err.Error(), "paintStory") {
		t.Fatalf("err = %v, want missing paintStory", err)
	}
	if err := ValidateDeciderCoverage(nil, nil); err == nil {
		t.Fatal("expected nil registry error")
	}
}

func TestValidateFoldCoverage_ReportsMissingCase(t *testing.T) {
	events := event.NewRegistry()
	if err := events.Register(event.Definition{Type: "storyPainted"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := ValidateFoldCoverage(events, room.FoldHandledTypes())
	if err == nil || !strings.Contains(err.Error(), "storyPainted") {
		t.Fatalf("err = %v, want missing storyPainted", err)
	}
}

func TestValidateEmittableEventTypes_ReportsUnregistered(t *testing.T) {
	events := event.NewRegistry()
	err := ValidateEmittableEventTypes(events, []event.Type{room.EventTypeStoryAdded})
	if err == nil || !strings.Contains(err.Error(), "storyAdded") {
		t.Fatalf("err = %v, want missing storyAdded", err)
	}
}

func TestValidatePayloadValidators_ReportsMissing(t *testing.T) {
	commands := command.NewRegistry()
	events := event.NewRegistry()
	if err := commands.Register(command.Definition{Type: "addStory"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := events.Register(event.Definition{
		Type:            "storyAdded",
		ValidatePayload: func(json.RawMessage) error { return nil },
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := ValidatePayloadValidators(commands, events)
	if err == nil || !strings.Contains(err.Error(), "command addStory") {
		t.Fatalf("err = %v, want missing command validator", err)
	}
}
