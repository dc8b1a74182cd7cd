// Package command defines the canonical command envelope and contract used across
// the room write path.
//
// Commands express user intent delivered by the dispatch boundary. The acting
// user is attached out-of-band by the transport and is never read from the
// payload, so deciders always evaluate rules against the authenticated actor.
package command
