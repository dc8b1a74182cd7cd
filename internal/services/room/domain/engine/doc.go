// Package engine wires the room registries and runs commands against the
// rooms store.
//
// The Processor is the single write path: validate the envelope, serialize on
// the room, decide, validate produced events, fold them one by one, and hand
// the ordered events back to the dispatch boundary. Registry construction
// verifies at startup that every registered command has a decider case and
// every registered event has a fold case.
package engine
