package presence

import (
	"sync"
	"testing"
)

func TestTracker_JoinLeave(t *testing.T) {
	tracker := NewTracker()

	diff := tracker.Join("room-a", "s1")
	if diff == nil {
		t.Fatal("Expected a join diff")
	}
	if diff.Event != EventJoin || diff.SessionID != "s1" || diff.Count != 1 {
		t.Errorf("Unexpected join diff: %+v", diff)
	}

	if tracker.Count("room-a") != 1 {
		t.Errorf("Expected count 1, got %d", tracker.Count("room-a"))
	}

	diff = tracker.Leave("room-a", "s1")
	if diff == nil {
		t.Fatal("Expected a leave diff")
	}
	if diff.Event != EventLeave || diff.Count != 0 {
		t.Errorf("Unexpected leave diff: %+v", diff)
	}

	if tracker.Count("room-a") != 0 {
		t.Errorf("Expected count 0, got %d", tracker.Count("room-a"))
	}
}

func TestTracker_LeaveIdempotent(t *testing.T) {
	tracker := NewTracker()

	tracker.Join("room-a", "s1")
	if diff := tracker.Leave("room-a", "s1"); diff == nil {
		t.Fatal("Expected a diff on first leave")
	}
	if diff := tracker.Leave("room-a", "s1"); diff != nil {
		t.Errorf("Second leave must be a no-op, got %+v", diff)
	}
	if diff := tracker.Leave("room-b", "s1"); diff != nil {
		t.Errorf("Leave on unknown room must be a no-op, got %+v", diff)
	}
}

func TestTracker_DuplicateJoin(t *testing.T) {
	tracker := NewTracker()

	tracker.Join("room-a", "s1")
	if diff := tracker.Join("room-a", "s1"); diff != nil {
		t.Errorf("Duplicate join must be a no-op, got %+v", diff)
	}
	if tracker.Count("room-a") != 1 {
		t.Errorf("Expected count 1 after duplicate join, got %d", tracker.Count("room-a"))
	}
}

func TestTracker_CountPerRoom(t *testing.T) {
	tracker := NewTracker()

	const n = 5
	for i := 0; i < n; i++ {
		tracker.Join("room-a", string(rune('a'+i)))
	}
	tracker.Join("room-b", "other")

	if got := tracker.Count("room-a"); got != n {
		t.Errorf("Expected count %d, got %d", n, got)
	}

	tracker.Leave("room-a", "a")
	if got := tracker.Count("room-a"); got != n-1 {
		t.Errorf("Expected count %d after one leave, got %d", n-1, got)
	}
	if got := tracker.Count("room-b"); got != 1 {
		t.Errorf("Expected room-b untouched, got %d", got)
	}
}

func TestTracker_ConcurrentJoinLeave(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			tracker.Join("room-a", id)
			tracker.Members("room-a")
			tracker.Leave("room-a", id)
		}(i)
	}
	wg.Wait()

	// Every join is matched by a leave; the last leave wins per session id.
	if got := tracker.Count("room-a"); got != 0 {
		t.Errorf("Expected empty room after churn, got %d", got)
	}
}
