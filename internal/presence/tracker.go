// Package presence tracks which sessions are connected to each room. The
// state lives only in memory: the presence set for a room is exactly the
// set of open channels, reconstructed from nothing after a restart.
package presence

import (
	"sync"
	"time"
)

const (
	EventJoin  = "join"
	EventLeave = "leave"
)

// Diff is an incremental presence change for one room, carrying enough for
// clients to apply without further queries.
type Diff struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
}

type entry struct {
	connectedAt time.Time
}

// Tracker holds per-room presence sets. Mutation and the diff describing it
// happen under one lock, so observers never see inconsistent counts.
type Tracker struct {
	mu    sync.Mutex
	rooms map[string]map[string]entry
}

func NewTracker() *Tracker {
	return &Tracker{
		rooms: make(map[string]map[string]entry),
	}
}

// Join adds a session to a room and returns the diff to broadcast. Joining
// twice with the same session is a no-op (nil diff).
func (t *Tracker) Join(roomCode, sessionID string) *Diff {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessions := t.rooms[roomCode]
	if sessions == nil {
		sessions = make(map[string]entry)
		t.rooms[roomCode] = sessions
	}

	if _, ok := sessions[sessionID]; ok {
		return nil
	}
	sessions[sessionID] = entry{connectedAt: time.Now()}

	return &Diff{Event: EventJoin, SessionID: sessionID, Count: len(sessions)}
}

// Leave removes a session. Idempotent: leaving twice, or leaving a room the
// session never joined, returns nil.
func (t *Tracker) Leave(roomCode, sessionID string) *Diff {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessions := t.rooms[roomCode]
	if sessions == nil {
		return nil
	}
	if _, ok := sessions[sessionID]; !ok {
		return nil
	}

	delete(sessions, sessionID)
	if len(sessions) == 0 {
		delete(t.rooms, roomCode)
	}

	return &Diff{Event: EventLeave, SessionID: sessionID, Count: len(sessions)}
}

// Count returns the number of sessions connected to a room.
func (t *Tracker) Count(roomCode string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rooms[roomCode])
}

// Members returns the session ids currently connected to a room.
func (t *Tracker) Members(roomCode string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessions := t.rooms[roomCode]
	members := make([]string, 0, len(sessions))
	for id := range sessions {
		members = append(members, id)
	}
	return members
}

// RoomCount returns the number of rooms with at least one session.
func (t *Tracker) RoomCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rooms)
}
