package connect4

import (
	"sync"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/topic"
)

type (
	// EventHub broadcasts committed events to in-process consumers
	EventHub struct {
		inner    topic.Topic[*Event]
		producer topic.Producer[*Event]
		mu       sync.RWMutex
		closed   bool
	}

	// Consumer receives the hub events that match its interests
	Consumer struct {
		inner     topic.Consumer[*Event]
		interests *interests
		filtered  <-chan *Event
		once      sync.Once
		closeOnce sync.Once
	}

	// interests describes what events a consumer is interested in
	interests struct {
		eventTypes map[EventType]bool // empty = all event types
		stream     string             // empty = all games
	}
)

// NewEventHub creates an EventHub backed by a fresh topic
func NewEventHub() *EventHub {
	inner := caravan.NewTopic[*Event]()
	return &EventHub{
		inner:    inner,
		producer: inner.NewProducer(),
	}
}

// Publish sends events to every consumer. Publishing to a closed hub is a
// no-op
func (eh *EventHub) Publish(evs ...*Event) {
	eh.mu.RLock()
	defer eh.mu.RUnlock()

	if eh.closed {
		return
	}
	for _, ev := range evs {
		eh.producer.Send() <- ev
	}
}

// Close stops the hub's producer
func (eh *EventHub) Close() error {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	if !eh.closed {
		eh.closed = true
		eh.producer.Close()
	}
	return nil
}

// NewConsumer creates a consumer interested in specific event types. If no
// event types are specified, the consumer receives all events
func (eh *EventHub) NewConsumer(eventTypes ...EventType) *Consumer {
	return eh.newConsumer(&interests{
		eventTypes: typeSet(eventTypes),
	})
}

// NewGameConsumer creates a consumer interested in the events of a single
// game, optionally restricted to specific event types
func (eh *EventHub) NewGameConsumer(
	gameID string, eventTypes ...EventType,
) *Consumer {
	return eh.newConsumer(&interests{
		eventTypes: typeSet(eventTypes),
		stream:     StreamName(gameID),
	})
}

func (eh *EventHub) newConsumer(i *interests) *Consumer {
	return &Consumer{
		inner:     eh.inner.NewConsumer(),
		interests: i,
	}
}

// Receive returns a channel of events filtered by the consumer's interests
func (c *Consumer) Receive() <-chan *Event {
	c.once.Do(func() {
		filtered := make(chan *Event, 1)

		go func() {
			defer close(filtered)
			for ev := range c.inner.Receive() {
				if c.matches(ev) {
					filtered <- ev
				}
			}
		}()

		c.filtered = filtered
	})

	return c.filtered
}

// Close detaches the consumer from the hub
func (c *Consumer) Close() error {
	c.closeOnce.Do(func() {
		c.inner.Close()
	})
	return nil
}

func (c *Consumer) matches(ev *Event) bool {
	if c.interests.stream != "" && ev.Stream != c.interests.stream {
		return false
	}
	if len(c.interests.eventTypes) > 0 && !c.interests.eventTypes[ev.Type] {
		return false
	}
	return true
}

func typeSet(eventTypes []EventType) map[EventType]bool {
	if len(eventTypes) == 0 {
		return nil
	}
	res := make(map[EventType]bool, len(eventTypes))
	for _, et := range eventTypes {
		res[et] = true
	}
	return res
}
