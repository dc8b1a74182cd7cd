// Package event defines the canonical event envelope and event-type registry used
// by the room write path.
//
// Events are immutable facts emitted by accepted decisions. They are the only
// mechanism that mutates room state, on the server and in every client mirror,
// so the registry keeps event names and payload shapes stable.
package event
