// Package server hosts the room HTTP and WebSocket boundary.
//
// Clients send commands as frames over /ws; the hub runs them through the
// command processor and fans every accepted event out to the members of the
// room. Rejections go back to the sender alone.
package server
