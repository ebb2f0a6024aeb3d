// Package events delivers committed marketplace events to the journal, subscribers and sinks.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wavesplatform/gomarket/pkg/logging"
	"github.com/wavesplatform/gomarket/pkg/metrics"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

const DefaultQueueSize = 1024

const (
	outcomeJournaled = "journaled"
	outcomeDelivered = "delivered"
	outcomeDropped   = "dropped"
	outcomeFailed    = "failed"
)

// Sink receives every event in order, for example a message broker publisher.
type Sink interface {
	Publish(e proto.Event) error
}

type subscription struct {
	ch     chan proto.Event
	closed bool
}

// Bus journals events synchronously and fans them out asynchronously.
// Notify never blocks on slow consumers: when the queue or a subscriber buffer is full
// the event is dropped for that consumer, it stays available in the journal.
type Bus struct {
	journal *Journal
	sinks   []Sink
	queue   chan proto.Event
	logger  *slog.Logger

	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64
}

func NewBus(journal *Journal, queueSize int, logger *slog.Logger, sinks ...Sink) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bus{
		journal: journal,
		sinks:   sinks,
		queue:   make(chan proto.Event, queueSize),
		logger:  logger,
		subs:    make(map[uint64]*subscription),
	}
}

func (b *Bus) Notify(events ...proto.Event) {
	if b.journal != nil {
		if err := b.journal.Append(events); err != nil {
			b.logger.Error("Failed to journal events", logging.Error(err), logging.ErrorTrace(err))
			for _, e := range events {
				metrics.Event(e.Type.String(), outcomeFailed)
			}
		} else {
			for _, e := range events {
				metrics.Event(e.Type.String(), outcomeJournaled)
			}
		}
	}
	for _, e := range events {
		select {
		case b.queue <- e:
		default:
			metrics.Event(e.Type.String(), outcomeDropped)
			b.logger.Warn("Events queue is full, event dropped", slog.String("event", e.String()))
		}
	}
}

// Subscribe returns a channel receiving events notified after the call, and a function
// to cancel the subscription. The channel is closed on cancel or when Run returns.
func (b *Bus) Subscribe(buffer int) (<-chan proto.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	s := &subscription{ch: make(chan proto.Event, buffer)}
	b.subs[id] = s
	return s.ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			s.close()
		}
	}
}

func (s *subscription) close() {
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Run dispatches queued events until the context is done.
func (b *Bus) Run(ctx context.Context) {
	defer b.closeSubscriptions()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-b.queue:
			b.dispatch(e)
		}
	}
}

func (b *Bus) dispatch(e proto.Event) {
	for _, s := range b.sinks {
		if err := s.Publish(e); err != nil {
			metrics.Event(e.Type.String(), outcomeFailed)
			b.logger.Warn("Failed to publish event", logging.Type(s), logging.Error(err))
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.subs {
		select {
		case s.ch <- e:
			metrics.Event(e.Type.String(), outcomeDelivered)
		default:
			metrics.Event(e.Type.String(), outcomeDropped)
			b.logger.Warn("Subscriber is too slow, event dropped",
				slog.Uint64("subscription", id), slog.Uint64("seq", e.Seq))
		}
	}
}

func (b *Bus) closeSubscriptions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.subs {
		s.close()
		delete(b.subs, id)
	}
}
