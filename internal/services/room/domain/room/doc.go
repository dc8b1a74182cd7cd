// Package room implements the room aggregate for estimation sessions.
//
// A room owns its users, its stories and the story currently being estimated.
// Commands are decided against a room snapshot and produce events; events are
// the only way the snapshot changes. Both Decide and Fold are pure so the same
// functions serve the authoritative processor, journal replay, and the client
// mirror.
package room
