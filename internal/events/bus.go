package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Filter selects which events a subscription receives.
type Filter func(Event) bool

// OfType matches events of one type.
func OfType(eventType string) Filter {
	return func(e Event) bool { return e.EventType() == eventType }
}

// InBatch matches events belonging to one batch run.
func InBatch(batchID string) Filter {
	return func(e Event) bool { return e.BatchID() == batchID }
}

type subscription struct {
	ch      chan Event
	match   Filter // nil matches everything
	dropped int
}

// Bus fans events out to in-process subscribers and appends them to an
// optional EventLog. Publishing never waits on a slow subscriber.
type Bus struct {
	mu     sync.Mutex
	subs   []*subscription
	log    *EventLog
	logger *slog.Logger
	closed bool
}

// NewBus creates a bus. eventLog may be nil to disable persistence.
func NewBus(eventLog *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{log: eventLog, logger: logger}
}

// Publish delivers e to every matching subscriber with buffer space, then
// persists it. A persistence failure is logged, not returned, so observers
// and the batch keep going when the database is unavailable.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	for _, s := range b.subs {
		if s.match != nil && !s.match(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			s.dropped++
			b.logger.Warn("subscriber full, dropping event",
				"type", e.EventType(),
				"entity_id", e.EntityID(),
				"dropped", s.dropped)
		}
	}
	b.mu.Unlock()

	if b.log == nil {
		return nil
	}
	if _, err := b.log.Append(ctx, e); err != nil {
		b.logger.Error("persist event", "type", e.EventType(), "error", err)
	}
	return nil
}

// Subscribe returns a channel receiving events of one type.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	return b.SubscribeFunc(OfType(eventType), bufferSize)
}

// SubscribeAll returns a channel receiving every event.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	return b.SubscribeFunc(nil, bufferSize)
}

// SubscribeFunc returns a channel receiving events accepted by match.
// A nil match accepts everything. Subscribing to a closed bus returns a
// closed channel.
func (b *Bus) SubscribeFunc(match Filter, bufferSize int) <-chan Event {
	ch := make(chan Event, bufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, &subscription{ch: ch, match: match})
	return ch
}

// Dropped reports how many events ch missed because its buffer was full.
func (b *Bus) Dropped(ch <-chan Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if s.ch == ch {
			return s.dropped
		}
	}
	return 0
}

// Unsubscribe removes and closes ch. Unknown channels are ignored.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.subs, func(s *subscription) bool { return s.ch == ch })
	if i < 0 {
		return
	}
	close(b.subs[i].ch)
	b.subs = slices.Delete(b.subs, i, i+1)
}

// Close closes every subscriber channel. Later publishes are no-ops.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	return nil
}
