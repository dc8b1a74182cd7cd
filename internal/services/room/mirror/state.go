package mirror

import (
	"time"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

const maxActionLog = 250

// State is the local view of a room.
type State struct {
	RoomID        string
	UserID        string
	Users         map[string]room.User
	Stories       map[string]room.Story
	SelectedStory string
	AutoReveal    bool
	CardConfig    []room.Card

	// PendingCommands holds commands sent but not yet answered, keyed by
	// command id.
	PendingCommands map[string]PendingCommand
	Rejections      []Rejection
	ActionLog       []LogEntry
}

// PendingCommand is a command awaiting its first event or a rejection.
type PendingCommand struct {
	ID     string
	Type   command.Type
	RoomID string
	SentAt time.Time
}

// Rejection is a command the server declined.
type Rejection struct {
	CorrelationID string
	Type          command.Type
	Code          string
	Reason        string
}

// LogEntry records an applied event.
type LogEntry struct {
	EventID   string
	Type      event.Type
	UserID    string
	Timestamp time.Time
}

// Initial returns the state of a client that is in no room.
func Initial() State {
	return State{
		Users:           map[string]room.User{},
		Stories:         map[string]room.Story{},
		PendingCommands: map[string]PendingCommand{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	snapshot := s.toRoom().Clone()
	out.Users = snapshot.Users
	out.Stories = snapshot.Stories
	out.CardConfig = snapshot.CardConfig
	if s.PendingCommands != nil {
		out.PendingCommands = make(map[string]PendingCommand, len(s.PendingCommands))
		for id, pending := range s.PendingCommands {
			out.PendingCommands[id] = pending
		}
	}
	out.Rejections = append([]Rejection(nil), s.Rejections...)
	out.ActionLog = append([]LogEntry(nil), s.ActionLog...)
	return out
}

func (s State) toRoom() room.Room {
	return room.Room{
		ID:            s.RoomID,
		Created:       s.RoomID != "",
		Users:         s.Users,
		Stories:       s.Stories,
		SelectedStory: s.SelectedStory,
		AutoReveal:    s.AutoReveal,
		CardConfig:    s.CardConfig,
	}
}

func (s State) withRoom(r room.Room) State {
	s.RoomID = r.ID
	s.Users = r.Users
	s.Stories = r.Stories
	s.SelectedStory = r.SelectedStory
	s.AutoReveal = r.AutoReveal
	s.CardConfig = r.CardConfig
	return s
}
