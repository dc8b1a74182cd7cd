// Package memory holds room aggregates in process memory.
//
// Each room lives in its own slot guarded by its own mutex, so writers to one
// room are serialized while different rooms proceed in parallel. No lock spans
// more than one room. A slot is dropped once it holds no room and no writer
// holds or waits for its lock.
package memory

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/louisbranch/pointing.space/internal/services/room/domain/room"
)

type slot struct {
	// mu serializes the read-decide-apply cycle for the room.
	mu sync.Mutex

	// state is guarded by stateMu so readers outside the write path never
	// observe a torn value.
	stateMu sync.RWMutex
	state   room.Room
	present bool

	// refs counts writers holding or waiting for mu. It is only touched
	// inside slots.Compute.
	refs int
}

// Store is an in-memory rooms store.
type Store struct {
	slots *xsync.Map[string, *slot]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{slots: xsync.NewMap[string, *slot]()}
}

// Lock blocks until the caller is the only writer for roomID.
func (s *Store) Lock(roomID string) (unlock func()) {
	sl, _ := s.slots.Compute(roomID, func(old *slot, loaded bool) (*slot, xsync.ComputeOp) {
		if !loaded {
			old = &slot{}
		}
		old.refs++
		return old, xsync.UpdateOp
	})
	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		s.release(roomID)
	}
}

func (s *Store) release(roomID string) {
	s.slots.Compute(roomID, func(old *slot, loaded bool) (*slot, xsync.ComputeOp) {
		if !loaded {
			return old, xsync.CancelOp
		}
		if old.refs > 0 {
			old.refs--
		}
		return old, s.retain(old)
	})
}

// retain keeps a slot while it holds a room or has writers.
func (s *Store) retain(sl *slot) xsync.ComputeOp {
	sl.stateMu.RLock()
	defer sl.stateMu.RUnlock()
	if sl.refs == 0 && !sl.present {
		return xsync.DeleteOp
	}
	return xsync.UpdateOp
}

// Get returns a copy of the stored room.
func (s *Store) Get(roomID string) (room.Room, bool) {
	sl, ok := s.slots.Load(roomID)
	if !ok {
		return room.Room{}, false
	}
	sl.stateMu.RLock()
	defer sl.stateMu.RUnlock()
	if !sl.present {
		return room.Room{}, false
	}
	return sl.state.Clone(), true
}

// Put stores a copy of state for roomID.
func (s *Store) Put(roomID string, state room.Room) {
	cloned := state.Clone()
	s.slots.Compute(roomID, func(old *slot, loaded bool) (*slot, xsync.ComputeOp) {
		if !loaded {
			old = &slot{}
		}
		old.stateMu.Lock()
		old.state = cloned
		old.present = true
		old.stateMu.Unlock()
		return old, xsync.UpdateOp
	})
}

// Delete forgets the room. A slot whose lock is held stays until the last
// writer releases it.
func (s *Store) Delete(roomID string) {
	s.slots.Compute(roomID, func(old *slot, loaded bool) (*slot, xsync.ComputeOp) {
		if !loaded {
			return old, xsync.CancelOp
		}
		old.stateMu.Lock()
		old.state = room.Room{}
		old.present = false
		old.stateMu.Unlock()
		return old, s.retain(old)
	})
}

// Len returns the number of rooms currently held.
func (s *Store) Len() int {
	count := 0
	s.slots.Range(func(_ string, sl *slot) bool {
		sl.stateMu.RLock()
		if sl.present {
			count++
		}
		sl.stateMu.RUnlock()
		return true
	})
	return count
}

// RoomIDs returns the ids of rooms currently held.
func (s *Store) RoomIDs() []string {
	var ids []string
	s.slots.Range(func(roomID string, sl *slot) bool {
		sl.stateMu.RLock()
		if sl.present {
			ids = append(ids, roomID)
		}
		sl.stateMu.RUnlock()
		return true
	})
	return ids
}
