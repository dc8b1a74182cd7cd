package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/louisbranch/pointing.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/event"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrDuplicateEvent indicates an event id that was already journaled.
var ErrDuplicateEvent = errors.New("event already journaled")

// Store is a SQLite-backed room event journal.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the journal at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrationFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append journals evt at the next sequence number of its room and returns it
// with Seq set.
func (s *Store) Append(ctx context.Context, evt event.Event) (event.Event, error) {
	stored, err := s.AppendBatch(ctx, []event.Event{evt})
	if err != nil {
		return event.Event{}, err
	}
	return stored[0], nil
}

// AppendBatch journals events in one transaction. Either every event is
// stored with consecutive per-room sequence numbers or none is.
func (s *Store) AppendBatch(ctx context.Context, events []event.Event) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if len(events) == 0 {
		return nil, nil
	}
	stored := make([]event.Event, len(events))
	for i, evt := range events {
		if strings.TrimSpace(evt.RoomID) == "" {
			return nil, event.ErrRoomIDRequired
		}
		if strings.TrimSpace(evt.ID) == "" {
			return nil, fmt.Errorf("event id is required")
		}
		if evt.Timestamp.IsZero() {
			evt.Timestamp = time.Now()
		}
		evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)
		if len(evt.PayloadJSON) == 0 {
			evt.PayloadJSON = []byte("{}")
		}
		stored[i] = evt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	nextSeq := make(map[string]int64)
	for i := range stored {
		evt := &stored[i]
		seq, ok := nextSeq[evt.RoomID]
		if !ok {
			if err := tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(seq), 0) + 1 FROM room_events WHERE room_id = ?`,
				evt.RoomID,
			).Scan(&seq); err != nil {
				return nil, fmt.Errorf("next event seq: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO room_events (room_id, seq, event_id, correlation_id, event_type, user_id, timestamp, payload_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			evt.RoomID,
			seq,
			evt.ID,
			evt.CorrelationID,
			string(evt.Type),
			evt.UserID,
			evt.Timestamp.UnixMilli(),
			string(evt.PayloadJSON),
		); err != nil {
			if isConstraintError(err) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateEvent, evt.ID)
			}
			if isBusyError(err) {
				return nil, fmt.Errorf("append %s: database busy: %w", evt.Type, err)
			}
			return nil, fmt.Errorf("append %s: %w", evt.Type, err)
		}
		evt.Seq = uint64(seq)
		nextSeq[evt.RoomID] = seq + 1
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// ListEvents returns every journaled event of a room in sequence order.
func (s *Store) ListEvents(ctx context.Context, roomID string) ([]event.Event, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, event_id, correlation_id, event_type, user_id, timestamp, payload_json
FROM room_events
WHERE room_id = ?
ORDER BY seq`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			seq       int64
			eventType string
			millis    int64
			payload   string
		)
		evt := event.Event{RoomID: roomID}
		if err := rows.Scan(&seq, &evt.ID, &evt.CorrelationID, &eventType, &evt.UserID, &millis, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.Type = event.Type(eventType)
		evt.Timestamp = time.UnixMilli(millis).UTC()
		evt.PayloadJSON = []byte(payload)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// LastSeq returns the highest sequence number journaled for a room, or zero.
func (s *Store) LastSeq(ctx context.Context, roomID string) (uint64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var seq int64
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM room_events WHERE room_id = ?`, roomID,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last event seq: %w", err)
	}
	return uint64(seq), nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
