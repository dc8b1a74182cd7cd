package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/net/websocket"

	"github.com/louisbranch/pointing.space/internal/platform/timeouts"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

type wsOriginContextKey struct{}

type wsSession struct {
	mu     sync.Mutex
	userID string
	peer   *wsPeer
	rooms  map[string]struct{}
}

func newWSSession(userID string, peer *wsPeer) *wsSession {
	return &wsSession{
		userID: userID,
		peer:   peer,
		rooms:  make(map[string]struct{}),
	}
}

func (s *wsSession) addRoom(roomID string) {
	s.mu.Lock()
	s.rooms[roomID] = struct{}{}
	s.mu.Unlock()
}

func (s *wsSession) removeRoom(roomID string) {
	s.mu.Lock()
	delete(s.rooms, roomID)
	s.mu.Unlock()
}

func (s *wsSession) joinedRooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]string, 0, len(s.rooms))
	for roomID := range s.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// withOrigin marks ctx as carrying a command from session.
func withOrigin(ctx context.Context, session *wsSession) context.Context {
	return context.WithValue(ctx, wsOriginContextKey{}, session)
}

func originFrom(ctx context.Context) *wsSession {
	if ctx == nil {
		return nil
	}
	session, _ := ctx.Value(wsOriginContextKey{}).(*wsSession)
	return session
}

type wsPeer struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	encoder *json.Encoder
}

func newWSPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{conn: conn, encoder: json.NewEncoder(conn)}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.SetWriteDeadline(time.Now().Add(timeouts.SocketWrite))
	}
	return p.encoder.Encode(frame)
}

// Hub tracks which connections belong to which room and delivers events to
// them. It is the processor's Publisher, so it runs while a room is held.
type Hub struct {
	rooms *xsync.Map[string, *roomMembers]
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: xsync.NewMap[string, *roomMembers]()}
}

type roomMembers struct {
	mu    sync.Mutex
	peers map[string]*wsPeer
}

func (h *Hub) members(roomID string) *roomMembers {
	members, _ := h.rooms.LoadOrStore(roomID, &roomMembers{peers: make(map[string]*wsPeer)})
	return members
}

// Publish delivers events to every member of roomID in order. A connection
// joins the room on its own joinedRoom and leaves on its own leftRoom,
// kicked or connectionLost.
func (h *Hub) Publish(ctx context.Context, roomID string, events []event.Event) {
	origin := originFrom(ctx)
	members := h.members(roomID)
	for _, evt := range events {
		if evt.Type == room.EventTypeJoinedRoom && origin != nil && subjectOf(evt) == origin.userID {
			members.subscribe(origin.userID, origin.peer)
			origin.addRoom(roomID)
		}

		frame := wsFrame{Type: frameTypeEvent, Payload: mustJSON(evt)}
		for _, peer := range members.snapshot() {
			_ = peer.writeFrame(frame)
		}

		switch evt.Type {
		case room.EventTypeLeftRoom, room.EventTypeKicked, room.EventTypeConnectionLost:
			userID := subjectOf(evt)
			members.unsubscribe(userID)
			if origin != nil && origin.userID == userID {
				origin.removeRoom(roomID)
			}
		}
	}
	if members.empty() {
		h.rooms.Delete(roomID)
	}
}

// MemberCount reports how many connections receive events for roomID.
func (h *Hub) MemberCount(roomID string) int {
	members, ok := h.rooms.Load(roomID)
	if !ok {
		return 0
	}
	members.mu.Lock()
	defer members.mu.Unlock()
	return len(members.peers)
}

func (m *roomMembers) subscribe(userID string, peer *wsPeer) {
	m.mu.Lock()
	m.peers[userID] = peer
	m.mu.Unlock()
}

func (m *roomMembers) unsubscribe(userID string) {
	m.mu.Lock()
	delete(m.peers, userID)
	m.mu.Unlock()
}

func (m *roomMembers) empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.peers) == 0
}

func (m *roomMembers) snapshot() []*wsPeer {
	m.mu.Lock()
	defer m.mu.Unlock()
	peers := make([]*wsPeer, 0, len(m.peers))
	for _, peer := range m.peers {
		peers = append(peers, peer)
	}
	return peers
}

// subjectOf returns the user an event is about: the payload user when the
// event names one, else the actor.
func subjectOf(evt event.Event) string {
	var payload struct {
		UserID string `json:"userId"`
	}
	if len(evt.PayloadJSON) > 0 {
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
	}
	if payload.UserID != "" {
		return payload.UserID
	}
	return evt.UserID
}
