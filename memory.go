package connect4

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryLog is an EventLog that keeps every stream in process memory. It is
// meant for tests and single-process play
type MemoryLog struct {
	mu      sync.RWMutex
	streams map[string][]*Event
}

var _ EventLog = (*MemoryLog)(nil)

// NewMemoryLog returns an empty MemoryLog
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		streams: map[string][]*Event{},
	}
}

func (l *MemoryLog) AppendEvents(
	ctx context.Context, stream string, expect Expectation, evs []*Event,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.streams[stream]
	version := int64(len(current))
	if !expect.Check(version) {
		return NewPreconditionError(stream, expect, version)
	}
	if len(evs) == 0 {
		return nil
	}

	for i, ev := range evs {
		stored := *ev
		stored.Sequence = version + int64(i)
		stored.Data = slices.Clone(ev.Data)
		current = append(current, &stored)
	}
	l.streams[stream] = current
	return nil
}

func (l *MemoryLog) GetEvents(
	ctx context.Context, stream string, fromSeq int64,
) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	current, ok := l.streams[stream]
	if !ok {
		return nil, ErrStreamNotFound
	}
	if fromSeq < 0 {
		fromSeq = 0
	}
	if fromSeq >= int64(len(current)) {
		return []*Event{}, nil
	}

	res := make([]*Event, 0, int64(len(current))-fromSeq)
	for _, ev := range current[fromSeq:] {
		cp := *ev
		cp.Data = slices.Clone(ev.Data)
		res = append(res, &cp)
	}
	return res, nil
}

// ListStreams returns the names of every stream, sorted
func (l *MemoryLog) ListStreams(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Sorted(maps.Keys(l.streams)), nil
}
