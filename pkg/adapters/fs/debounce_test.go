package fs

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/geoarch/pkg/core"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	var fired []core.Event
	fire := func(e core.Event) {
		mu.Lock()
		fired = append(fired, e)
		mu.Unlock()
	}

	for i := int64(1); i <= 5; i++ {
		d.add(core.Event{Type: core.EventReload, ID: "slot", Timestamp: i}, fire)
	}
	d.add(core.Event{Type: core.EventReload, ID: "other", Timestamp: 9}, fire)

	time.Sleep(150 * time.Millisecond)
	d.stopAndWait(time.Second)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 2 {
		t.Fatalf("expected 2 coalesced events, got %d: %v", len(fired), fired)
	}
	for _, e := range fired {
		if e.ID == "slot" && e.Timestamp != 5 {
			t.Errorf("expected the latest event to win, got timestamp %d", e.Timestamp)
		}
	}
}

func TestDebouncerStopDropsPending(t *testing.T) {
	d := newDebouncer(time.Hour)
	called := false
	d.add(core.Event{ID: "slot"}, func(core.Event) { called = true })

	d.stopAndWait(time.Second)
	d.add(core.Event{ID: "late"}, func(core.Event) { called = true })

	if called {
		t.Error("stopped debouncer must not fire")
	}
}
