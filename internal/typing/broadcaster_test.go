package typing

import (
	"sync"
	"testing"
	"time"
)

type recordedDiff struct {
	roomCode string
	diff     Diff
	exclude  string
}

type captureSink struct {
	mu    sync.Mutex
	diffs []recordedDiff
}

func (s *captureSink) TypingChanged(roomCode string, diff Diff, excludeSession string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diffs = append(s.diffs, recordedDiff{roomCode: roomCode, diff: diff, exclude: excludeSession})
}

func (s *captureSink) snapshot() []recordedDiff {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedDiff, len(s.diffs))
	copy(out, s.diffs)
	return out
}

func TestBroadcaster_SetEmitsDiff(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(time.Second, sink)

	b.Set("room-a", "s1", true)

	diffs := sink.snapshot()
	if len(diffs) != 1 {
		t.Fatalf("Expected 1 diff, got %d", len(diffs))
	}
	if diffs[0].roomCode != "room-a" || !diffs[0].diff.IsTyping || diffs[0].diff.SessionID != "s1" {
		t.Errorf("Unexpected diff: %+v", diffs[0])
	}
	if diffs[0].exclude != "s1" {
		t.Errorf("Expected originating session excluded, got %q", diffs[0].exclude)
	}
}

func TestBroadcaster_AutoExpiry(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(50*time.Millisecond, sink)

	b.Set("room-a", "s1", true)

	deadline := time.After(time.Second)
	for {
		diffs := sink.snapshot()
		if len(diffs) == 2 {
			if diffs[1].diff.IsTyping {
				t.Fatalf("Expected synthetic false diff, got %+v", diffs[1])
			}
			if diffs[1].diff.SessionID != "s1" || diffs[1].exclude != "s1" {
				t.Errorf("Unexpected expiry diff: %+v", diffs[1])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("Typing signal did not auto-expire within the quiet window")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBroadcaster_RefreshDefersExpiry(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(80*time.Millisecond, sink)

	b.Set("room-a", "s1", true)
	time.Sleep(50 * time.Millisecond)
	b.Set("room-a", "s1", true) // refresh before expiry
	time.Sleep(50 * time.Millisecond)

	// 100ms elapsed but the refresh reset the clock: no false diff yet.
	for _, d := range sink.snapshot() {
		if !d.diff.IsTyping {
			t.Fatalf("Expiry fired despite refresh: %+v", d)
		}
	}

	if got := b.Typing("room-a"); len(got) != 1 || got[0] != "s1" {
		t.Errorf("Expected s1 still typing, got %v", got)
	}
}

func TestBroadcaster_ExplicitStop(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(time.Second, sink)

	b.Set("room-a", "s1", true)
	b.Set("room-a", "s1", false)

	diffs := sink.snapshot()
	if len(diffs) != 2 {
		t.Fatalf("Expected 2 diffs, got %d", len(diffs))
	}
	if diffs[1].diff.IsTyping {
		t.Errorf("Expected stop diff, got %+v", diffs[1])
	}
	if len(b.Typing("room-a")) != 0 {
		t.Error("Expected empty typing set after explicit stop")
	}
}

func TestBroadcaster_SessionAppearsOnce(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(time.Second, sink)

	b.Set("room-a", "s1", true)
	b.Set("room-a", "s1", true)
	b.Set("room-a", "s2", true)

	typing := b.Typing("room-a")
	if len(typing) != 2 {
		t.Fatalf("Expected 2 typing sessions, got %v", typing)
	}
}

func TestBroadcaster_RefreshEmitsNoDuplicateDiff(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(time.Second, sink)

	b.Set("room-a", "s1", true)
	b.Set("room-a", "s1", true) // refresh: re-arms, stays silent
	b.Set("room-a", "s1", true)

	if diffs := sink.snapshot(); len(diffs) != 1 {
		t.Fatalf("Expected 1 diff for repeated typing, got %d", len(diffs))
	}

	// Stopping when no signal exists is equally silent.
	b.Set("room-a", "s2", false)

	if diffs := sink.snapshot(); len(diffs) != 1 {
		t.Fatalf("Stop without a signal must not emit, got %d diffs", len(sink.snapshot()))
	}
}

func TestBroadcaster_ClearIsSilent(t *testing.T) {
	sink := &captureSink{}
	b := NewBroadcaster(30*time.Millisecond, sink)

	b.Set("room-a", "s1", true)
	b.Clear("room-a", "s1")

	time.Sleep(80 * time.Millisecond)

	diffs := sink.snapshot()
	if len(diffs) != 1 {
		t.Fatalf("Clear must not emit diffs nor let the timer fire, got %d diffs", len(diffs))
	}
}
