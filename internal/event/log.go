package event

import "sync"

// Capacity bounds the log. When an append would grow past it, the log
// keeps only the newest Retained events before appending, so the log
// shrinks hard rather than sliding by one.
const (
	Capacity = 50
	Retained = 25
)

// Log is an ordered, capacity-bounded event sequence, oldest first.
// It is plain data; the Bus serializes access to it.
type Log struct {
	events []Event
}

// Append adds e, trimming first if the log is at capacity.
func (l *Log) Append(e Event) {
	if len(l.events) >= Capacity {
		l.events = append(l.events[:0:0], l.events[len(l.events)-Retained:]...)
	}
	l.events = append(l.events, e)
}

// Latest returns the most recently appended event. ok is false when the
// log is empty.
func (l *Log) Latest() (Event, bool) {
	if len(l.events) == 0 {
		return Event{}, false
	}
	return l.events[len(l.events)-1], true
}

// Len reports the number of retained events.
func (l *Log) Len() int { return len(l.events) }

// Snapshot returns a copy of the retained events, oldest first.
func (l *Log) Snapshot() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Clear empties the log.
func (l *Log) Clear() { l.events = nil }

// Subscriber observes the log after each append. It receives the whole
// current log, not just the new event; subscribers that only care about
// the newest entry read the final element.
type Subscriber func(log []Event)

// Bus couples a Log with a single subscriber. Dispatch never blocks and
// never fails: this is a synchronous in-process log, not a durable
// queue. The log is guarded so readers on other goroutines see a
// consistent snapshot; the subscriber is invoked with the lock
// released, on the dispatching goroutine.
type Bus struct {
	mu  sync.Mutex
	log Log
	sub Subscriber
}

// NewBus returns a bus with no subscriber; dispatched events are still
// logged.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers the single subscriber, replacing any previous one.
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sub = s
}

// Dispatch appends unconditionally (no de-duplication) and invokes the
// subscriber with the full current log.
func (b *Bus) Dispatch(e Event) {
	b.mu.Lock()
	b.log.Append(e)
	snapshot := b.log.Snapshot()
	sub := b.sub
	b.mu.Unlock()
	if sub != nil {
		sub(snapshot)
	}
}

// Clear empties the log without notifying the subscriber.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Clear()
}

// Latest exposes the newest logged event.
func (b *Bus) Latest() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log.Latest()
}

// Len reports the number of retained events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log.Len()
}

// Events returns a copy of the retained log.
func (b *Bus) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log.Snapshot()
}
