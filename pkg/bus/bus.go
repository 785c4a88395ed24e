// Package bus pkg/bus/bus.go implements the in-process broadcast bus that
// decouples the ingestion pipeline from live subscribers. Delivery is
// best-effort: nothing is persisted, a publish with no subscribers is dropped
// silently, and a subscriber that falls behind loses messages rather than
// blocking the publisher. Within one channel, messages arrive in publish
// order. The event store remains the audit trail.
package bus

import (
	"context"
	"sync"
)

// Channel names used by the pipeline.
const (
	ChannelTelemetry = "telemetry"
	ChannelAlerts    = "alerts"
)

const defaultBufferSize = 64

// Message is one published payload on a named channel.
type Message struct {
	Channel string
	Payload []byte
}

type subscriber struct {
	ch chan Message
}

// Bus is a concurrency-safe publish/subscribe fan-out.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string]map[int64]*subscriber
	nextID  int64
	bufSize int
}

// New creates a Bus with the default per-subscriber buffer.
func New() *Bus {
	return NewWithBuffer(defaultBufferSize)
}

// NewWithBuffer creates a Bus whose subscribers each buffer up to size
// messages before drops begin.
func NewWithBuffer(size int) *Bus {
	if size < 1 {
		size = 1
	}

	return &Bus{
		subs:    make(map[string]map[int64]*subscriber),
		bufSize: size,
	}
}

// Publish delivers payload to every current subscriber of channel. It never
// blocks: a subscriber whose buffer is full misses this message.
func (b *Bus) Publish(channel string, payload []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[channel] {
		select {
		case sub.ch <- Message{Channel: channel, Payload: payload}:
		default:
			// Slow subscriber; best-effort delivery drops the message.
		}
	}
}

// Subscribe registers a new subscriber on channel and returns its message
// stream. The subscription ends when ctx is done; the returned channel is
// closed after unsubscription. Messages published before Subscribe returns
// are never delivered.
func (b *Bus) Subscribe(ctx context.Context, channel string) <-chan Message {
	sub := &subscriber{ch: make(chan Message, b.bufSize)}

	b.mu.Lock()

	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int64]*subscriber)
	}

	b.nextID++
	id := b.nextID
	b.subs[channel][id] = sub

	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(channel, id)
	}()

	return sub.ch
}

// SubscriberCount reports the number of live subscriptions on channel.
func (b *Bus) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs[channel])
}

func (b *Bus) unsubscribe(channel string, id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[channel][id]
	if !ok {
		return
	}

	delete(b.subs[channel], id)
	close(sub.ch)
}
