package connect4

import (
	"encoding/json"
	"fmt"
	"time"
)

type (
	// Decoder turns a persisted Event back into its DomainEvent variant
	Decoder func(*Event) (DomainEvent, error)

	// Decoders maps each EventType to the Decoder for its variant
	Decoders map[EventType]Decoder

	validated interface {
		validate() error
	}
)

var decoders = Decoders{
	GameStartedType: MakeDecoder[GameStarted](),
	MoveMadeType:    MakeDecoder[MoveMade](),
	GameEndedType:   MakeDecoder[GameEnded](),
}

// MakeDecoder returns a Decoder that unmarshals the event body into T and
// checks that the result is well-formed
func MakeDecoder[T DomainEvent]() Decoder {
	return func(ev *Event) (DomainEvent, error) {
		var data T
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return nil, fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		if v, ok := any(data).(validated); ok {
			if err := v.validate(); err != nil {
				return nil, fmt.Errorf("decode %s: %w", ev.Type, err)
			}
		}
		return data, nil
	}
}

// Encode wraps a DomainEvent in a persistable Event envelope. The sequence
// is left for the Repository to assign
func Encode(ev DomainEvent) (*Event, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnknownEvent)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &Event{
		Timestamp: time.Now(),
		Type:      ev.Type(),
		Stream:    StreamName(ev.AggregateID()),
		Data:      data,
	}, nil
}

// Decode restores the DomainEvent held by a persisted Event
func Decode(ev *Event) (DomainEvent, error) {
	dec, ok := decoders[ev.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return dec(ev)
}

// DecodeAll decodes a slice of persisted Events, stopping at the first
// failure
func DecodeAll(evs []*Event) ([]DomainEvent, error) {
	res := make([]DomainEvent, 0, len(evs))
	for _, ev := range evs {
		de, err := Decode(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", ev.Sequence, err)
		}
		res = append(res, de)
	}
	return res, nil
}

func (e GameStarted) validate() error {
	if e.GameID == "" || e.PlayerOne == "" || e.PlayerTwo == "" {
		return fmt.Errorf("%w: incomplete GameStarted", ErrInvalidPlayers)
	}
	return nil
}

func (e MoveMade) validate() error {
	if !e.Column.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, string(e.Column))
	}
	return nil
}

func (e GameEnded) validate() error {
	if !e.Result.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResult, string(e.Result))
	}
	return nil
}
