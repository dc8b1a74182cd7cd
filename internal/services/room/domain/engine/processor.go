package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/pointing.space/internal/platform/errors"
	"github.com/louisbranch/pointing.space/internal/platform/id"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

const tracerName = "github.com/louisbranch/pointing.space/internal/services/room/domain/engine"

var (
	// ErrCommandRegistryRequired indicates a missing command registry.
	ErrCommandRegistryRequired = errors.New("command registry is required")
	// ErrEventRegistryRequired indicates a missing event registry.
	ErrEventRegistryRequired = errors.New("event registry is required")
	// ErrStoreRequired indicates a missing rooms store.
	ErrStoreRequired = errors.New("rooms store is required")
)

// RoomStore holds room aggregates and serializes writers per room.
type RoomStore interface {
	// Lock blocks until the caller owns roomID and returns the release func.
	Lock(roomID string) (unlock func())
	Get(roomID string) (room.Room, bool)
	Put(roomID string, state room.Room)
	Delete(roomID string)
}

// EventJournal appends produced events to durable storage. A batch is
// stored whole or not at all.
type EventJournal interface {
	AppendBatch(ctx context.Context, events []event.Event) ([]event.Event, error)
}

// RoomLoader rehydrates a room that is not held in memory.
type RoomLoader interface {
	LoadRoom(ctx context.Context, roomID string) (room.Room, bool, error)
}

// Publisher receives the events of an accepted command while the room is
// still held, so deliveries for one room follow processing order.
type Publisher interface {
	Publish(ctx context.Context, roomID string, events []event.Event)
}

// Processor runs commands against the rooms store.
type Processor struct {
	Registries Registries
	Store      RoomStore
	// Journal is optional; when set every produced event is appended before
	// the store is updated.
	Journal EventJournal
	// Loader is optional; it is consulted when a room is missing from Store.
	Loader RoomLoader
	// Publisher is optional; it sees every accepted batch of events.
	Publisher Publisher
	// Deck seeds the card configuration of newly created rooms.
	Deck  []room.Card
	Now   func() time.Time
	NewID func() string
}

// Result captures the events produced by one command and the room they led to.
type Result struct {
	Events []event.Event
	Room   room.Room
}

// Process validates cmd on behalf of userID and applies its events.
//
// Commands addressed to the same room are processed one at a time in arrival
// order; commands for different rooms never wait on each other. A rejected
// command returns a *RejectionError and leaves the store untouched.
func (p *Processor) Process(ctx context.Context, cmd command.Command, userID string) (Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "room.process", trace.WithAttributes(
		attribute.String("room.id", cmd.RoomID),
		attribute.String("command.type", string(cmd.Type)),
	))
	defer span.End()

	result, err := p.process(ctx, cmd, userID)
	if err != nil {
		var rejection *RejectionError
		if errors.As(err, &rejection) {
			span.AddEvent("command.rejected", trace.WithAttributes(
				attribute.String("rejection.code", rejection.Code()),
				attribute.String("rejection.reason", rejection.Reason()),
			))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return Result{}, err
	}
	span.SetAttributes(attribute.Int("command.events", len(result.Events)))
	return result, nil
}

func (p *Processor) process(ctx context.Context, cmd command.Command, userID string) (Result, error) {
	if p.Registries.Commands == nil {
		return Result{}, ErrCommandRegistryRequired
	}
	if p.Registries.Events == nil {
		return Result{}, ErrEventRegistryRequired
	}
	if p.Store == nil {
		return Result{}, ErrStoreRequired
	}

	cmd.UserID = userID
	validated, err := p.Registries.Commands.ValidateForDecision(cmd)
	if err != nil {
		if errors.Is(err, command.ErrTypeUnknown) {
			return Result{}, apperrors.Wrap(apperrors.CodeUnknownCommand, fmt.Sprintf("Unknown command %q", cmd.Type), err)
		}
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidCommand, err.Error(), err)
	}
	cmd = validated
	def, _ := p.Registries.Commands.Definition(cmd.Type)

	unlock := p.Store.Lock(cmd.RoomID)
	defer unlock()

	state, err := p.load(ctx, cmd.RoomID)
	if err != nil {
		return Result{}, err
	}
	if !state.Created {
		if !def.AllowMissingRoom {
			return Result{}, apperrors.WithMetadata(apperrors.CodeUnknownRoom,
				fmt.Sprintf("Room %q does not exist", cmd.RoomID),
				map[string]string{"room_id": cmd.RoomID})
		}
		state = room.Blank(cmd.RoomID, p.Deck)
	}

	decision := room.Decide(state, cmd, p.now, p.newID)
	if decision.Rejected() {
		return Result{}, &RejectionError{
			CommandID:  cmd.ID,
			RoomID:     cmd.RoomID,
			Rejections: decision.Rejections,
		}
	}

	events := make([]event.Event, 0, len(decision.Events))
	snapshots := make([]room.Room, 0, len(decision.Events))
	next := state
	for _, evt := range decision.Events {
		vetted, err := p.Registries.Events.ValidateForApply(evt)
		if err != nil {
			return Result{}, fmt.Errorf("validate %s: %w", evt.Type, err)
		}
		vetted.ID = p.newID()
		next, err = room.Fold(next, vetted)
		if err != nil {
			return Result{}, fmt.Errorf("fold %s: %w", vetted.Type, err)
		}
		events = append(events, vetted)
		snapshots = append(snapshots, next)
	}

	if p.Journal != nil {
		stored, err := p.Journal.AppendBatch(ctx, events)
		if err != nil {
			return Result{}, fmt.Errorf("journal %s: %w", cmd.Type, err)
		}
		events = stored
	}

	for _, snapshot := range snapshots {
		p.Store.Put(cmd.RoomID, snapshot)
	}
	if next.Created && len(next.Users) == 0 {
		p.Store.Delete(cmd.RoomID)
	}
	if p.Publisher != nil {
		p.Publisher.Publish(ctx, cmd.RoomID, events)
	}
	return Result{Events: events, Room: next}, nil
}

// load returns the stored room, falling back to the loader. A zero Room means
// the room does not exist.
func (p *Processor) load(ctx context.Context, roomID string) (room.Room, error) {
	if state, ok := p.Store.Get(roomID); ok {
		return state, nil
	}
	if p.Loader == nil {
		return room.Room{}, nil
	}
	state, ok, err := p.Loader.LoadRoom(ctx, roomID)
	if err != nil {
		return room.Room{}, fmt.Errorf("load room %s: %w", roomID, err)
	}
	if !ok {
		return room.Room{}, nil
	}
	return state, nil
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Processor) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return id.MustNewID()
}
