// Package sqlite provides the durable room event journal.
//
// The journal is append-only. Each room has its own gapless sequence starting
// at 1, and replaying a room's events in sequence order rebuilds the room.
package sqlite
