package connect4_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/connect4"
)

func testEvent(stream string) *connect4.Event {
	return &connect4.Event{
		Timestamp: time.Now(),
		Type:      connect4.MoveMadeType,
		Stream:    stream,
		Data:      json.RawMessage(`{"game_id":"g1","player_id":"a","column":"A"}`),
	}
}

func TestExpectation(t *testing.T) {
	tests := []struct {
		expect connect4.Expectation
		mode   string
		pass   []int64
		fail   []int64
	}{
		{connect4.AnyVersion, "any", []int64{0, 1, 9}, nil},
		{connect4.NoStream, "no_stream", []int64{0}, []int64{1, 2}},
		{connect4.StreamExists, "exists", []int64{1, 5}, []int64{0}},
		{connect4.ExpectVersion(3), "version", []int64{3}, []int64{0, 2, 4}},
		{connect4.ExpectVersion(0), "no_stream", []int64{0}, []int64{1}},
	}

	for _, tc := range tests {
		t.Run(tc.expect.String(), func(t *testing.T) {
			assert.Equal(t, tc.mode, tc.expect.Mode())
			for _, v := range tc.pass {
				assert.True(t, tc.expect.Check(v), "version %d", v)
			}
			for _, v := range tc.fail {
				assert.False(t, tc.expect.Check(v), "version %d", v)
			}
		})
	}

	assert.Equal(t, "version 3", connect4.ExpectVersion(3).String())
	assert.Equal(t, "no stream", connect4.NoStream.String())
	assert.Equal(t, int64(3), connect4.ExpectVersion(3).Version())
}

func TestPreconditionError(t *testing.T) {
	err := error(connect4.NewPreconditionError(
		"game-g1", connect4.ExpectVersion(2), 5,
	))

	assert.ErrorIs(t, err, connect4.ErrPrecondition)
	assert.Contains(t, err.Error(), `stream "game-g1" precondition failed`)
	assert.Contains(t, err.Error(), "expected version 2")
	assert.Contains(t, err.Error(), "but at version 5")

	var pe *connect4.PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, int64(5), pe.Actual)
}

func TestStreamName(t *testing.T) {
	assert.Equal(t, "game-abc", connect4.StreamName("abc"))

	id, ok := connect4.GameIDFromStream("game-abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = connect4.GameIDFromStream("other-abc")
	assert.False(t, ok)
}

func TestMemoryLog(t *testing.T) {
	l := connect4.NewMemoryLog()
	ctx := context.Background()
	stream := connect4.StreamName("g1")

	_, err := l.GetEvents(ctx, stream, 0)
	assert.ErrorIs(t, err, connect4.ErrStreamNotFound)

	err = l.AppendEvents(ctx, stream, connect4.StreamExists,
		[]*connect4.Event{testEvent(stream)},
	)
	assert.ErrorIs(t, err, connect4.ErrPrecondition)

	err = l.AppendEvents(ctx, stream, connect4.NoStream,
		[]*connect4.Event{testEvent(stream), testEvent(stream)},
	)
	require.NoError(t, err)

	err = l.AppendEvents(ctx, stream, connect4.NoStream,
		[]*connect4.Event{testEvent(stream)},
	)
	assert.ErrorIs(t, err, connect4.ErrPrecondition)

	err = l.AppendEvents(ctx, stream, connect4.ExpectVersion(2),
		[]*connect4.Event{testEvent(stream)},
	)
	require.NoError(t, err)

	evs, err := l.GetEvents(ctx, stream, 0)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	for i, ev := range evs {
		assert.Equal(t, int64(i), ev.Sequence)
	}

	tail, err := l.GetEvents(ctx, stream, 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, int64(2), tail[0].Sequence)

	empty, err := l.GetEvents(ctx, stream, 10)
	assert.NoError(t, err)
	assert.Empty(t, empty)

	streams, err := l.ListStreams(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{stream}, streams)
}

func TestMemoryLogCopiesEvents(t *testing.T) {
	l := connect4.NewMemoryLog()
	ctx := context.Background()
	ev := testEvent("s")

	require.NoError(t, l.AppendEvents(ctx, "s", connect4.AnyVersion,
		[]*connect4.Event{ev},
	))
	ev.Data[0] = 'X'

	evs, err := l.GetEvents(ctx, "s", 0)
	require.NoError(t, err)
	evs[0].Type = "changed"

	again, err := l.GetEvents(ctx, "s", 0)
	require.NoError(t, err)
	assert.Equal(t, connect4.MoveMadeType, again[0].Type)
	assert.Equal(t, byte('{'), again[0].Data[0])
}

func TestMemoryLogCanceled(t *testing.T) {
	l := connect4.NewMemoryLog()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.AppendEvents(ctx, "s", connect4.AnyVersion, nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = l.GetEvents(ctx, "s", 0)
	assert.ErrorIs(t, err, context.Canceled)
}
