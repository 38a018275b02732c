package watch

import (
	"fmt"
	"testing"
	"time"
)

func collectEvents(ch <-chan Event, wait time.Duration) []Event {
	var events []Event
	deadline := time.After(wait)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			return events
		}
	}
}

func TestDebouncerCoalescesWrites(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Close()

	for i := 0; i < 5; i++ {
		d.Feed(Event{Path: "/a.txt", Op: OpWrite, Time: time.Now()})
		time.Sleep(5 * time.Millisecond)
	}

	events := collectEvents(d.Events(), 150*time.Millisecond)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 coalesced write", len(events))
	}
	if events[0].Op != OpWrite || events[0].Path != "/a.txt" {
		t.Errorf("event = %+v, want write on /a.txt", events[0])
	}
}

func TestDebouncerCreateAbsorbsWrites(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Close()

	d.Feed(Event{Path: "/a.txt", Op: OpCreate, Time: time.Now()})
	d.Feed(Event{Path: "/a.txt", Op: OpWrite, Time: time.Now()})

	events := collectEvents(d.Events(), 150*time.Millisecond)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Op != OpCreate {
		t.Errorf("op = %v, want CREATE", events[0].Op)
	}
}

func TestDebouncerRemovePassesThrough(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Close()

	d.Feed(Event{Path: "/a.txt", Op: OpWrite, Time: time.Now()})
	d.Feed(Event{Path: "/a.txt", Op: OpRemove, Time: time.Now()})

	select {
	case ev := <-d.Events():
		if ev.Op != OpRemove {
			t.Errorf("op = %v, want REMOVE", ev.Op)
		}
	case <-time.After(20 * time.Millisecond):
		t.Fatal("remove should be delivered immediately")
	}

	// The pending write was cancelled by the remove.
	if events := collectEvents(d.Events(), 120*time.Millisecond); len(events) != 0 {
		t.Errorf("got %d trailing events, want none", len(events))
	}
}

func TestDebouncerSeparatePaths(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Close()

	d.Feed(Event{Path: "/a.txt", Op: OpWrite, Time: time.Now()})
	d.Feed(Event{Path: "/b.txt", Op: OpWrite, Time: time.Now()})

	events := collectEvents(d.Events(), 120*time.Millisecond)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	seen := map[string]bool{}
	for _, ev := range events {
		seen[ev.Path] = true
	}
	if !seen["/a.txt"] || !seen["/b.txt"] {
		t.Errorf("events = %v, want one per path", events)
	}
}

func TestCloseDuringPendingDelivery(t *testing.T) {
	d := NewDebouncer(time.Hour)
	d.Feed(Event{Path: "/a.txt", Op: OpWrite, Time: time.Now()})

	// Replay the window where a fired timer has claimed its pending entry
	// but has not delivered it yet.
	d.mu.Lock()
	p := d.pending["/a.txt"]
	p.timer.Stop()
	delete(d.pending, "/a.txt")
	d.mu.Unlock()

	d.Close()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("delivery after Close panicked: %v", r)
		}
	}()
	d.emit(p.event)

	if ev, ok := <-d.Events(); ok {
		t.Errorf("unexpected event after Close: %+v", ev)
	}
}

func TestCloseRacesFlushTimers(t *testing.T) {
	// Short delays make flush timers fire while Close runs. A send on the
	// closed channel would panic and fail the test.
	for i := 0; i < 50; i++ {
		d := NewDebouncer(time.Millisecond)
		for j := 0; j < 8; j++ {
			d.Feed(Event{Path: fmt.Sprintf("/f%d.txt", j), Op: OpWrite, Time: time.Now()})
		}
		time.Sleep(time.Millisecond)
		d.Close()
	}
}

func TestDebouncerSurfacesDrops(t *testing.T) {
	d := NewDebouncer(time.Hour)
	defer d.Close()

	var dropped []Event
	d.SetOnDrop(func(ev Event) { dropped = append(dropped, ev) })

	// Removes pass through synchronously; one more than the channel buffer
	// overflows it.
	for i := 0; i <= cap(d.out); i++ {
		d.Feed(Event{Path: fmt.Sprintf("/f%03d.txt", i), Op: OpRemove, Time: time.Now()})
	}

	if len(dropped) != 1 {
		t.Fatalf("dropped %d events, want 1", len(dropped))
	}
	if want := fmt.Sprintf("/f%03d.txt", cap(d.out)); dropped[0].Path != want {
		t.Errorf("dropped path = %q, want %s", dropped[0].Path, want)
	}
}

func TestDebouncerClose(t *testing.T) {
	d := NewDebouncer(time.Hour)
	d.Feed(Event{Path: "/a.txt", Op: OpWrite, Time: time.Now()})
	d.Close()

	if _, ok := <-d.Events(); ok {
		t.Error("events channel should be closed with nothing pending")
	}

	// Feeding after close is a no-op.
	d.Feed(Event{Path: "/b.txt", Op: OpWrite, Time: time.Now()})
}
