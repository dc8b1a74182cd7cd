// Package mirror keeps a client-side copy of a room in step with the server.
//
// Reduce folds broadcast events into a local State using the same fold rules
// as the authoritative room, plus the client-only cases that depend on who
// the local user is (bootstrapping on your own join, resetting on your own
// leave). Client wraps Reduce with pending-command tracking and tolerates
// event names it does not understand.
package mirror
