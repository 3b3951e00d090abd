package connect4

import (
	"context"
	"fmt"
	"strings"
)

type (
	// EventLog is an append-only store of ordered event streams, one per
	// game. Implementations must make AppendEvents atomic: either every
	// event is appended and the Expectation held, or nothing changes
	EventLog interface {
		// AppendEvents appends evs to the named stream if expect holds for
		// the stream's current version, otherwise it returns a
		// *PreconditionError
		AppendEvents(
			ctx context.Context, stream string, expect Expectation, evs []*Event,
		) error

		// GetEvents returns the events of the stream starting at fromSeq.
		// It returns ErrStreamNotFound if the stream does not exist
		GetEvents(
			ctx context.Context, stream string, fromSeq int64,
		) ([]*Event, error)
	}

	// Expectation is the optimistic concurrency precondition of an append
	Expectation struct {
		kind    expectKind
		version int64
	}

	expectKind int
)

const (
	expectAny expectKind = iota
	expectNoStream
	expectExists
	expectVersion
)

const streamPrefix = "game-"

var (
	// AnyVersion appends regardless of the stream's state
	AnyVersion = Expectation{kind: expectAny}

	// NoStream requires that the stream does not exist yet
	NoStream = Expectation{kind: expectNoStream}

	// StreamExists requires that the stream already holds events
	StreamExists = Expectation{kind: expectExists}
)

// ExpectVersion requires that the stream holds exactly version events. A
// version of zero is equivalent to NoStream
func ExpectVersion(version int64) Expectation {
	if version <= 0 {
		return NoStream
	}
	return Expectation{kind: expectVersion, version: version}
}

// Check reports whether a stream currently holding version events
// satisfies the Expectation
func (e Expectation) Check(version int64) bool {
	switch e.kind {
	case expectNoStream:
		return version == 0
	case expectExists:
		return version > 0
	case expectVersion:
		return version == e.version
	default:
		return true
	}
}

// Mode returns a stable name for the Expectation, used by stores that
// evaluate the check server-side
func (e Expectation) Mode() string {
	switch e.kind {
	case expectNoStream:
		return "no_stream"
	case expectExists:
		return "exists"
	case expectVersion:
		return "version"
	default:
		return "any"
	}
}

// Version returns the exact version required, or zero
func (e Expectation) Version() int64 {
	return e.version
}

func (e Expectation) String() string {
	if e.kind == expectVersion {
		return fmt.Sprintf("version %d", e.version)
	}
	return strings.ReplaceAll(e.Mode(), "_", " ")
}

// StreamName returns the stream that holds a game's events
func StreamName(gameID string) string {
	return streamPrefix + gameID
}

// GameIDFromStream extracts the game id from a stream name
func GameIDFromStream(stream string) (string, bool) {
	return strings.CutPrefix(stream, streamPrefix)
}

// NewPreconditionError builds the error an EventLog returns when expect
// does not hold for a stream at version actual
func NewPreconditionError(
	stream string, expect Expectation, actual int64,
) *PreconditionError {
	return &PreconditionError{
		Stream:   stream,
		Expected: expect,
		Actual:   actual,
	}
}
