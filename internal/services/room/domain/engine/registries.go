package engine

import (
	"fmt"
	"strings"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

// Registries bundles the command and event registries.
type Registries struct {
	Commands *command.Registry
	Events   *event.Registry
}

// BuildRegistries registers the room contracts and validates their coverage.
//
// Any error here means the binary was built with an inconsistent handler set
// and must not start.
func BuildRegistries() (Registries, error) {
	commands := command.NewRegistry()
	events := event.NewRegistry()

	if err := room.RegisterCommands(commands); err != nil {
		return Registries{}, err
	}
	if err := room.RegisterEvents(events); err != nil {
		return Registries{}, err
	}
	if err := ValidateDeciderCoverage(commands, room.DeciderHandledCommands()); err != nil {
		return Registries{}, err
	}
	if err := ValidateFoldCoverage(events, room.FoldHandledTypes()); err != nil {
		return Registries{}, err
	}
	if err := ValidateEmittableEventTypes(events, room.EmittableEventTypes()); err != nil {
		return Registries{}, err
	}
	if err := ValidatePayloadValidators(commands, events); err != nil {
		return Registries{}, err
	}
	return Registries{Commands: commands, Events: events}, nil
}

// ValidateDeciderCoverage ensures every registered command has a decider case.
func ValidateDeciderCoverage(commands *command.Registry, handled []command.Type) error {
	if commands == nil {
		return fmt.Errorf("command registry is required for decider coverage validation")
	}
	known := make(map[command.Type]struct{}, len(handled))
	for _, t := range handled {
		known[t] = struct{}{}
	}
	var missing []string
	for _, def := range commands.ListDefinitions() {
		if _, ok := known[def.Type]; !ok {
			missing = append(missing, string(def.Type))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("commands missing decider cases: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateFoldCoverage ensures every registered event has a fold case.
func ValidateFoldCoverage(events *event.Registry, handled []event.Type) error {
	if events == nil {
		return fmt.Errorf("event registry is required for fold coverage validation")
	}
	known := make(map[event.Type]struct{}, len(handled))
	for _, t := range handled {
		known[t] = struct{}{}
	}
	var missing []string
	for _, def := range events.ListDefinitions() {
		if _, ok := known[def.Type]; !ok {
			missing = append(missing, string(def.Type))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("events missing fold handlers: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateEmittableEventTypes ensures every event a decider can emit is registered.
func ValidateEmittableEventTypes(events *event.Registry, emittable []event.Type) error {
	if events == nil {
		return fmt.Errorf("event registry is required for emittable validation")
	}
	var missing []string
	for _, t := range emittable {
		if _, ok := events.Definition(t); !ok {
			missing = append(missing, string(t))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("emittable event types not in registry: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidatePayloadValidators ensures every registered type validates its payload.
func ValidatePayloadValidators(commands *command.Registry, events *event.Registry) error {
	var missing []string
	for _, def := range commands.ListDefinitions() {
		if def.ValidatePayload == nil {
			missing = append(missing, "command "+string(def.Type))
		}
	}
	for _, t := range events.MissingPayloadValidators() {
		missing = append(missing, "event "+string(t))
	}
	if len(missing) > 0 {
		return fmt.Errorf("types missing payload validators: %s", strings.Join(missing, ", "))
	}
	return nil
}
