package queue

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
	"github.com/crazylearners/portal/internal/pkg/metrics"
)

const channelBuffer = 16

// Broadcaster fans session events out to every subscriber. Each subscriber
// owns a buffered channel; Publish never blocks and drops the event for a
// subscriber whose buffer is full.
type Broadcaster struct {
	log zerolog.Logger

	mu     sync.Mutex
	subs   map[int]chan domain.SessionEvent
	next   int
	closed bool
}

var _ ports.SessionEventBus = (*Broadcaster)(nil)

func NewBroadcaster(log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		log:  log,
		subs: make(map[int]chan domain.SessionEvent),
	}
}

// Publish delivers ev to all current subscribers. Safe to call after Close.
func (b *Broadcaster) Publish(ev domain.SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			metrics.SessionEventsDroppedTotal.Inc()
			b.log.Warn().
				Int("subscriber_id", id).
				Str("phase", string(ev.Phase)).
				Msg("session subscriber is slow, event dropped")
		}
	}
}

// Subscribe registers a new subscriber. The returned func removes it and
// closes its channel; calling it more than once is safe. Subscribing after
// Close yields an already closed channel.
func (b *Broadcaster) Subscribe() (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, channelBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch
	metrics.SessionSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.remove(id) })
	}
}

// Close ends every subscription. Later publishes are ignored.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
		metrics.SessionSubscribers.Dec()
	}
}

// Len reports the number of active subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
	metrics.SessionSubscribers.Dec()
}
