package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	apperrors "github.com/louisbranch/pointing.space/internal/platform/errors"
	"github.com/louisbranch/pointing.space/internal/platform/id"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/command"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/engine"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

// CommandProcessor runs a command on behalf of a connected user.
type CommandProcessor interface {
	Process(ctx context.Context, cmd command.Command, userID string) (engine.Result, error)
}

// NewHandler creates the room routes. The hub must be the processor's
// Publisher for events to reach connections.
func NewHandler(processor CommandProcessor, hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, processor, hub)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if processor == nil || hub == nil {
			http.Error(w, "room processor is not configured", http.StatusServiceUnavailable)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

// userIDFromRequest trusts the ?userId= query as the actor for the whole
// connection. There is no authentication; a client picks its own identity.
func userIDFromRequest(r *http.Request) string {
	if r != nil {
		if userID := strings.TrimSpace(r.URL.Query().Get("userId")); userID != "" {
			return userID
		}
	}
	return id.MustNewID()
}

func handleWSConn(conn *websocket.Conn, processor CommandProcessor, hub *Hub) {
	defer func() {
		_ = conn.Close()
	}()

	ctx := context.Background()
	if request := conn.Request(); request != nil {
		ctx = request.Context()
	}
	decoder := json.NewDecoder(conn)
	session := newWSSession(userIDFromRequest(conn.Request()), newWSPeer(conn))
	defer disconnect(processor, session)

	_ = session.peer.writeFrame(wsFrame{
		Type:    frameTypeWelcome,
		Payload: mustJSON(welcomePayload{UserID: session.userID}),
	})

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(session.peer, "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(session.peer, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(session.peer, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		switch frame.Type {
		case frameTypeCommand:
			handleCommandFrame(ctx, processor, session, frame)
		default:
			_ = writeWSError(session.peer, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func handleCommandFrame(ctx context.Context, processor CommandProcessor, session *wsSession, frame wsFrame) {
	var cmd command.Command
	if err := json.Unmarshal(frame.Payload, &cmd); err != nil {
		_ = writeWSError(session.peer, "INVALID_ARGUMENT", "invalid command payload")
		return
	}

	if _, err := processor.Process(withOrigin(ctx, session), cmd, session.userID); err != nil {
		writeRejection(session, cmd, err)
	}
}

// disconnect marks the user as gone in every room the connection joined.
func disconnect(processor CommandProcessor, session *wsSession) {
	for _, roomID := range session.joinedRooms() {
		cmd := command.Command{
			ID:          id.MustNewID(),
			RoomID:      roomID,
			Type:        room.CommandTypeLeaveRoom,
			PayloadJSON: mustJSON(room.LeaveRoomPayload{ConnectionLost: true}),
		}
		ctx := withOrigin(context.Background(), session)
		if _, err := processor.Process(ctx, cmd, session.userID); err != nil {
			log.Printf("room: connection lost cleanup failed room=%q user=%q err=%v", roomID, session.userID, err)
		}
	}
}

func writeRejection(session *wsSession, cmd command.Command, err error) {
	payload := rejectionPayload{
		CorrelationID: cmd.ID,
		RoomID:        cmd.RoomID,
	}
	var rejection *engine.RejectionError
	switch code := apperrors.CodeOf(err); {
	case errors.As(err, &rejection):
		payload.Code = apperrors.CodePreconditionFailed.WireCode()
		payload.Reason = rejection.Reason()
		log.Printf("room: command rejected id=%q room=%q type=%q code=%q reason=%q", cmd.ID, cmd.RoomID, cmd.Type, rejection.Code(), payload.Reason)
	case code == apperrors.CodeUnknown:
		payload.Code = code.WireCode()
		payload.Reason = "internal error"
		log.Printf("room: command failed id=%q room=%q type=%q err=%v", cmd.ID, cmd.RoomID, cmd.Type, err)
	default:
		payload.Code = code.WireCode()
		payload.Reason = err.Error()
		log.Printf("room: command refused id=%q room=%q type=%q code=%q reason=%q", cmd.ID, cmd.RoomID, cmd.Type, payload.Code, payload.Reason)
	}
	_ = session.peer.writeFrame(wsFrame{
		Type:    frameTypeCommandRejected,
		Payload: mustJSON(payload),
	})
}

func writeWSError(peer *wsPeer, code string, message string) error {
	return peer.writeFrame(wsFrame{
		Type:    frameTypeError,
		Payload: mustJSON(wsError{Code: code, Message: message}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}
