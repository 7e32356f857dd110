// Package typing keeps the transient "who is typing" signal per room.
// Signals are never persisted and self-expire after a quiet period.
package typing

import (
	"sync"
	"time"
)

// Diff is a typing change for one room. The originating session must not
// receive its own echo; the hub enforces that exclusion on delivery.
type Diff struct {
	SessionID string `json:"session_id"`
	IsTyping  bool   `json:"is_typing"`
}

// Sink receives typing diffs to fan out.
type Sink interface {
	TypingChanged(roomCode string, diff Diff, excludeSession string)
}

type key struct {
	roomCode  string
	sessionID string
}

type signal struct {
	gen   uint64
	timer *time.Timer
}

// Broadcaster records typing state and schedules its expiry. Each signal
// carries a generation; an expiry for a superseded generation is ignored,
// so a refresh racing the quiet-period timer cannot emit a stale false.
type Broadcaster struct {
	mu      sync.Mutex
	signals map[key]*signal
	gen     uint64
	ttl     time.Duration
	sink    Sink
}

// NewBroadcaster creates a broadcaster with the given quiet period.
func NewBroadcaster(ttl time.Duration, sink Sink) *Broadcaster {
	return &Broadcaster{
		signals: make(map[key]*signal),
		ttl:     ttl,
		sink:    sink,
	}
}

// Set records or clears a session's typing signal and emits the diff to
// everyone else in the room. A true signal left unrefreshed for the quiet
// period emits a synthetic false diff. A session holds at most one signal;
// a refresh re-arms the expiry without repeating the diff, and clearing an
// absent signal says nothing.
func (b *Broadcaster) Set(roomCode, sessionID string, isTyping bool) {
	k := key{roomCode: roomCode, sessionID: sessionID}

	b.mu.Lock()
	s, existed := b.signals[k]
	if existed {
		s.timer.Stop()
		delete(b.signals, k)
	}
	if isTyping {
		b.gen++
		gen := b.gen
		b.signals[k] = &signal{
			gen:   gen,
			timer: time.AfterFunc(b.ttl, func() { b.expire(k, gen) }),
		}
	}
	b.mu.Unlock()

	if existed == isTyping {
		return
	}

	b.sink.TypingChanged(roomCode, Diff{SessionID: sessionID, IsTyping: isTyping}, sessionID)
}

// Clear drops any pending signal for a session without emitting a diff.
// Called on channel close, when the leave diff already tells subscribers
// the session is gone.
func (b *Broadcaster) Clear(roomCode, sessionID string) {
	k := key{roomCode: roomCode, sessionID: sessionID}

	b.mu.Lock()
	if s, ok := b.signals[k]; ok {
		s.timer.Stop()
		delete(b.signals, k)
	}
	b.mu.Unlock()
}

// Typing returns the sessions with an active typing signal in a room.
func (b *Broadcaster) Typing(roomCode string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sessions []string
	for k := range b.signals {
		if k.roomCode == roomCode {
			sessions = append(sessions, k.sessionID)
		}
	}
	return sessions
}

func (b *Broadcaster) expire(k key, gen uint64) {
	b.mu.Lock()
	s, ok := b.signals[k]
	if !ok || s.gen != gen {
		b.mu.Unlock()
		return
	}
	delete(b.signals, k)
	b.mu.Unlock()

	b.sink.TypingChanged(k.roomCode, Diff{SessionID: k.sessionID, IsTyping: false}, k.sessionID)
}
