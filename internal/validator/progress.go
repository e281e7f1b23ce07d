package validator

import "sync/atomic"

// Reporter receives coarse progress updates during validation.
// Implementations must return quickly and must never block: the engine
// calls them inline from worker goroutines, and outcome delivery takes
// priority over progress delivery.
type Reporter interface {
	// Start is called once with the number of URLs to be dispatched.
	Start(total int)

	// Update is called after each completed URL.
	Update(done, total int)

	// Finish is called once after the last outcome, with the number of
	// URLs that actually completed.
	Finish(done, total int)
}

// Event is one progress update from the engine.
type Event struct {
	Done  int
	Total int
}

// Tracker is a channel-backed Reporter. Emits never block: when the
// consumer falls behind, events are dropped and counted. Display code
// reads Events and renders at whatever pace it likes.
type Tracker struct {
	events  chan Event
	dropped atomic.Int64
	closed  atomic.Bool
}

// defaultTrackerBuffer holds enough events that a terminal renderer
// redrawing every few milliseconds never causes drops in practice.
const defaultTrackerBuffer = 256

// NewTracker creates a Tracker with the given channel buffer.
// A non-positive buffer uses the default.
func NewTracker(buffer int) *Tracker {
	if buffer <= 0 {
		buffer = defaultTrackerBuffer
	}
	return &Tracker{events: make(chan Event, buffer)}
}

// Start implements Reporter.
func (t *Tracker) Start(total int) {
	t.emit(Event{Done: 0, Total: total})
}

// Update implements Reporter.
func (t *Tracker) Update(done, total int) {
	t.emit(Event{Done: done, Total: total})
}

// Finish implements Reporter.
func (t *Tracker) Finish(done, total int) {
	t.emit(Event{Done: done, Total: total})
}

// Events returns the stream of progress updates.
func (t *Tracker) Events() <-chan Event {
	return t.events
}

// Dropped reports how many events were discarded because the consumer
// was not keeping up.
func (t *Tracker) Dropped() int64 {
	return t.dropped.Load()
}

// Close ends the event stream. Call it only after validation has
// returned; the consumer's range loop then terminates.
func (t *Tracker) Close() {
	if t.closed.CompareAndSwap(false, true) {
		close(t.events)
	}
}

func (t *Tracker) emit(e Event) {
	if t.closed.Load() {
		return
	}
	select {
	case t.events <- e:
	default:
		t.dropped.Add(1)
	}
}
