package connect4

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

type (
	// Repository loads and persists Game aggregates
	Repository interface {
		// Add persists a new game. It fails if the game's stream already
		// exists
		Add(ctx context.Context, g *Game) error

		// Update persists the events a loaded game raised since it was
		// loaded. It fails if the stream moved on in the meantime
		Update(ctx context.Context, g *Game) error

		// Get rebuilds a game by replaying its stream
		Get(ctx context.Context, gameID string) (*Game, error)
	}

	// EventRepository is a Repository over any EventLog
	EventRepository struct {
		log   EventLog
		hub   *EventHub
		cache *historyCache
	}

	// RepositoryOption configures an EventRepository
	RepositoryOption func(*EventRepository)
)

var _ Repository = (*EventRepository)(nil)

// WithEventHub publishes every committed event to the hub
func WithEventHub(hub *EventHub) RepositoryOption {
	return func(r *EventRepository) {
		r.hub = hub
	}
}

// WithCacheSize keeps the histories of up to size games in memory. Zero
// disables the cache
func WithCacheSize(size int) RepositoryOption {
	return func(r *EventRepository) {
		r.cache = newHistoryCache(size)
	}
}

// NewEventRepository creates a Repository backed by the EventLog
func NewEventRepository(
	log EventLog, opts ...RepositoryOption,
) *EventRepository {
	r := &EventRepository{log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hub returns the EventHub that committed events are published to, if any
func (r *EventRepository) Hub() *EventHub {
	return r.hub
}

func (r *EventRepository) Add(ctx context.Context, g *Game) error {
	return r.save(ctx, g, func(int64) Expectation {
		return NoStream
	})
}

func (r *EventRepository) Update(ctx context.Context, g *Game) error {
	return r.save(ctx, g, ExpectVersion)
}

func (r *EventRepository) Get(ctx context.Context, gameID string) (*Game, error) {
	stream := StreamName(gameID)
	cached := r.cache.Get(gameID)

	evs, err := r.log.GetEvents(ctx, stream, int64(len(cached)))
	if errors.Is(err, ErrStreamNotFound) {
		r.cache.Remove(gameID)
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, err
	}

	tail, err := DecodeAll(evs)
	if err != nil {
		return nil, fmt.Errorf("game %q: %w", gameID, err)
	}

	history := slices.Concat(cached, tail)
	g := NewGameWithID(gameID)
	if err := g.LoadFromHistory(history); err != nil {
		r.cache.Remove(gameID)
		return nil, fmt.Errorf("game %q: %w", gameID, err)
	}
	r.cache.Put(gameID, history)
	return g, nil
}

func (r *EventRepository) save(
	ctx context.Context, g *Game, expect func(int64) Expectation,
) error {
	var published []*Event
	_, err := g.Flush(func(version int64, evs []DomainEvent) error {
		encoded, err := encodeAll(evs, version)
		if err != nil {
			return err
		}
		stream := StreamName(g.ID())
		if err := r.log.AppendEvents(
			ctx, stream, expect(version), encoded,
		); err != nil {
			return err
		}
		published = encoded
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPrecondition) {
			r.cache.Remove(g.ID())
		}
		return err
	}

	if len(published) > 0 {
		r.cache.Put(g.ID(), g.Committed())
		if r.hub != nil {
			r.hub.Publish(published...)
		}
	}
	return nil
}

func encodeAll(evs []DomainEvent, fromSeq int64) ([]*Event, error) {
	res := make([]*Event, 0, len(evs))
	for i, de := range evs {
		ev, err := Encode(de)
		if err != nil {
			return nil, err
		}
		ev.Sequence = fromSeq + int64(i)
		res = append(res, ev)
	}
	return res, nil
}

// DomainEventTypes returns the wire type of each event, in order
func DomainEventTypes(evs []DomainEvent) []EventType {
	return lo.Map(evs, func(ev DomainEvent, _ int) EventType {
		return ev.Type()
	})
}
