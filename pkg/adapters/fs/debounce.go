package fs

import (
	"sync"
	"time"

	"github.com/aretw0/geoarch/pkg/core"
)

// debouncer coalesces bursts of events for the same id into the last one.
// Editors and atomic renames produce several fsnotify events per save.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	latest  map[string]core.Event
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*time.Timer),
		latest:  make(map[string]core.Event),
	}
}

// add schedules fire(e) after the delay, replacing any pending event with the same id.
func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.latest[e.ID] = e
	if t, ok := d.pending[e.ID]; ok {
		// A timer that already fired is waiting for the lock and will pick up e.
		if t.Stop() {
			t.Reset(d.delay)
		}
		return
	}

	d.wg.Add(1)
	d.pending[e.ID] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		ev := d.latest[e.ID]
		delete(d.pending, e.ID)
		delete(d.latest, e.ID)
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			fire(ev)
		}
	})
}

// stopAndWait drops pending events and waits up to timeout for callbacks already running.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.pending {
		if t.Stop() {
			// The callback will never run, so release it here.
			d.wg.Done()
		}
		delete(d.pending, id)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
