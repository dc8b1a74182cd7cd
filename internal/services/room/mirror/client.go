package mirror

import (
	"log"
	"sync"
	"time"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

// ActionEventReceived is dispatched for every known event before the event
// itself, so observers can settle the command it answers.
const ActionEventReceived = "EVENT_RECEIVED"

// Action is one step dispatched by the client.
type Action struct {
	Type          string
	CorrelationID string
	Event         *event.Event
}

// Client owns a mirrored State and the commands awaiting a response.
type Client struct {
	mu    sync.Mutex
	state State
	known map[event.Type]struct{}
	now   func() time.Time

	// OnAction, when set, observes each dispatched action after it is applied.
	OnAction func(Action, State)
}

// NewClient returns a client for the given local user.
func NewClient(userID string) *Client {
	known := make(map[event.Type]struct{})
	for _, t := range room.EmittableEventTypes() {
		known[t] = struct{}{}
	}
	state := Initial()
	state.UserID = userID
	return &Client{state: state, known: known, now: time.Now}
}

// State returns a copy of the mirrored state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Send records cmd as pending until an event or rejection answers it.
func (c *Client) Send(cmd command.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PendingCommands[cmd.ID] = PendingCommand{
		ID:     cmd.ID,
		Type:   cmd.Type,
		RoomID: cmd.RoomID,
		SentAt: c.now().UTC(),
	}
}

// Receive applies a broadcast event. Events with unknown names are logged
// and dropped without touching state.
func (c *Client) Receive(evt event.Event) error {
	if _, ok := c.known[evt.Type]; !ok {
		log.Printf("mirror: unknown event %q dropped", evt.Type)
		return nil
	}

	c.mu.Lock()
	delete(c.state.PendingCommands, evt.CorrelationID)
	received := c.state.Clone()
	c.mu.Unlock()
	c.notify(Action{Type: ActionEventReceived, CorrelationID: evt.CorrelationID}, received)

	c.mu.Lock()
	next, err := Reduce(c.state, evt)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	applied := next.Clone()
	c.mu.Unlock()
	c.notify(Action{Type: string(evt.Type), CorrelationID: evt.CorrelationID, Event: &evt}, applied)
	return nil
}

// Reject records a rejection for a pending command and stops waiting on it.
func (c *Client) Reject(correlationID, code, reason string) {
	c.mu.Lock()
	pending := c.state.PendingCommands[correlationID]
	delete(c.state.PendingCommands, correlationID)
	c.state.Rejections = append(c.state.Rejections, Rejection{
		CorrelationID: correlationID,
		Type:          pending.Type,
		Code:          code,
		Reason:        reason,
	})
	snapshot := c.state.Clone()
	c.mu.Unlock()
	c.notify(Action{Type: "COMMAND_REJECTED", CorrelationID: correlationID}, snapshot)
}

// WaitingForJoin reports whether a joinRoom command is still unanswered.
func (c *Client) WaitingForJoin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, pending := range c.state.PendingCommands {
		if pending.Type == room.CommandTypeJoinRoom {
			return true
		}
	}
	return false
}

func (c *Client) notify(action Action, state State) {
	if c.OnAction != nil {
		c.OnAction(action, state)
	}
}
