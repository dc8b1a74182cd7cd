package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/pointing.space/internal/platform/timeouts"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/engine"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
	"github.com/louisbranch/pointing.space/internal/services/room/storage/memory"
	"github.com/louisbranch/pointing.space/internal/services/room/storage/sqlite"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3

	frameTypeCommand         = "command"
	frameTypeEvent           = "event"
	frameTypeCommandRejected = "commandRejected"
	frameTypeWelcome         = "welcome"
	frameTypeError           = "error"
)

// Config defines the inputs for the room process.
type Config struct {
	HTTPAddr string
	// JournalPath enables the SQLite event journal when set.
	JournalPath string
	// DeckPath points at a YAML card deck; empty selects the built-in deck.
	DeckPath          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the room HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	journal         *sqlite.Store
}

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type rejectionPayload struct {
	CorrelationID string `json:"correlationId"`
	RoomID        string `json:"roomId"`
	Code          string `json:"code"`
	Reason        string `json:"reason"`
}

type welcomePayload struct {
	UserID string `json:"userId"`
}

// NewServer builds a configured room server.
func NewServer(config Config) (*Server, error) {
	return NewServerWithContext(context.Background(), config)
}

// NewServerWithContext builds a configured room server with an explicit context.
func NewServerWithContext(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	registries, err := engine.BuildRegistries()
	if err != nil {
		return nil, fmt.Errorf("build registries: %w", err)
	}
	deck, err := room.LoadDeck(config.DeckPath)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}

	hub := NewHub()
	processor := &engine.Processor{
		Registries: registries,
		Store:      memory.NewStore(),
		Publisher:  hub,
		Deck:       deck,
	}

	var journal *sqlite.Store
	if path := strings.TrimSpace(config.JournalPath); path != "" {
		journal, err = sqlite.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		processor.Journal = journal
		processor.Loader = engine.ReplayLoader{Events: journal}
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(processor, hub),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
		journal:         journal,
	}, nil
}

// Run creates and serves a room server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServerWithContext(ctx, config)
	if err != nil {
		return fmt.Errorf("init room server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve room: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("room server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("room server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		log.Printf("close room journal: %v", err)
	}
}
