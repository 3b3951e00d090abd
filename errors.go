package connect4

import (
	"errors"
	"fmt"
)

type (
	// PreconditionError is returned by an EventLog when an append does not
	// satisfy its Expectation. The caller should re-read the stream and
	// decide whether to retry
	PreconditionError struct {
		Stream   string
		Expected Expectation
		Actual   int64
	}
)

var (
	// ErrGameAlreadyStarted is returned when starting a game that already
	// has history
	ErrGameAlreadyStarted = errors.New("game already started")

	// ErrInvalidMove is the root of every rejected move
	ErrInvalidMove = errors.New("invalid move")

	// ErrInvalidPlayers is returned when a game is started with empty or
	// identical player ids
	ErrInvalidPlayers = errors.New("invalid players")

	// ErrColumnFull is returned by Board.AddMove when a column already holds
	// six tokens
	ErrColumnFull = errors.New("column is full")

	ErrInvalidColumn = errors.New("invalid column")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidResult = errors.New("invalid game result")

	// ErrUnknownEvent indicates an event that the aggregate cannot apply or
	// the codec cannot decode. It signals a data or version mismatch and is
	// never ignored
	ErrUnknownEvent = errors.New("unknown event")

	// ErrInvalidHistory is returned when replayed events are out of order
	ErrInvalidHistory = errors.New("invalid game history")

	// ErrPrecondition is matched by every PreconditionError
	ErrPrecondition = errors.New("stream precondition failed")

	// ErrStreamNotFound is returned when reading a stream that has never
	// been appended to
	ErrStreamNotFound = errors.New("stream not found")

	// ErrGameNotFound is returned by a Repository for unknown game ids
	ErrGameNotFound = errors.New("game not found")

	// ErrMaxRetriesExceeded is returned when a command keeps losing
	// optimistic concurrency races
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

func (e *PreconditionError) Error() string {
	return fmt.Sprintf(
		"stream %q precondition failed: expected %s, but at version %d",
		e.Stream, e.Expected, e.Actual,
	)
}

// Is allows errors.Is(err, ErrPrecondition) to match any PreconditionError
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

func invalidMove(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMove, fmt.Sprintf(format, args...))
}
