package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid events for the same path into one. A save that
// hits the disk as several writes in quick succession surfaces as a single
// OpWrite; a create immediately followed by writes surfaces as one OpCreate.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingEvent
	out     chan Event
	onDrop  func(Event)
	closed  bool
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// NewDebouncer creates a debouncer emitting on its Events channel.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingEvent),
		out:     make(chan Event, 100),
	}
}

// Events returns the channel of coalesced events.
func (d *Debouncer) Events() <-chan Event {
	return d.out
}

// SetOnDrop installs a handler invoked when a full output channel forces an
// event to be dropped. The handler runs with the debouncer lock held and must
// not call back into the debouncer.
func (d *Debouncer) SetOnDrop(fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDrop = fn
}

// Feed submits an event for coalescing. Rename and remove events flush any
// pending event for the path and pass through immediately; only creates and
// writes are delayed.
func (d *Debouncer) Feed(event Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	if event.Op.Has(OpRename) || event.Op.Has(OpRemove) {
		if p, ok := d.pending[event.Path]; ok {
			p.timer.Stop()
			delete(d.pending, event.Path)
		}
		d.mu.Unlock()
		d.emit(event)
		return
	}

	if p, ok := d.pending[event.Path]; ok {
		// Keep the earliest op (a pending create absorbs later writes)
		// but the newest timestamp, and restart the quiet period.
		p.event.Time = event.Time
		p.timer.Reset(d.delay)
		d.mu.Unlock()
		return
	}

	p := &pendingEvent{event: event}
	p.timer = time.AfterFunc(d.delay, func() { d.flush(event.Path, p) })
	d.pending[event.Path] = p
	d.mu.Unlock()
}

// flush delivers a pending event when its quiet period ends.
func (d *Debouncer) flush(path string, p *pendingEvent) {
	d.mu.Lock()
	if d.closed || d.pending[path] != p {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.mu.Unlock()

	d.emit(p.event)
}

// Close flushes nothing further and closes the output channel. The channel is
// closed while holding the lock, so a timer that already claimed its pending
// entry still observes the closed flag in emit and never sends.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for _, p := range d.pending {
		p.timer.Stop()
	}
	d.pending = make(map[string]*pendingEvent)
	close(d.out)
}

// emit sends an event, dropping it if the channel is full. Delivery checks
// the closed flag under the lock; Close closes the channel under the same
// lock, so emit can never send on a closed channel.
func (d *Debouncer) emit(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.out <- event:
	default:
		if d.onDrop != nil {
			d.onDrop(event)
		}
	}
}
