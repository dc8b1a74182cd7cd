// Package timeouts defines shared timeout constants for pointing.space
// processes.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SocketWrite caps a single websocket frame write so one slow client cannot
// stall delivery to the rest of a room.
const SocketWrite = 5 * time.Second
