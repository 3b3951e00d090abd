package connect4

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

type (
	// Game is the aggregate root of a single Connect Four match. Its state
	// is a projection of its events: committed events have been persisted,
	// uncommitted events were raised by commands since the last Flush. A
	// Game is not safe for concurrent use
	Game struct {
		id          string
		state       gameState
		committed   []DomainEvent
		uncommitted []DomainEvent
	}

	// Flusher persists a game's uncommitted events. version is the number
	// of events the stream is expected to hold before the append
	Flusher func(version int64, evs []DomainEvent) error

	gameState struct {
		board      *Board
		playerOne  string
		playerTwo  string
		nextPlayer string
		result     GameResult
		started    bool
	}
)

// NewGame creates an empty, unstarted Game with a random identity
func NewGame() *Game {
	return NewGameWithID(uuid.NewString())
}

// NewGameWithID creates an empty, unstarted Game with the given identity
func NewGameWithID(id string) *Game {
	return &Game{
		id:    id,
		state: newGameState(),
	}
}

func newGameState() gameState {
	return gameState{board: NewBoard()}
}

// StartGame assigns the players and raises GameStarted. Player one moves
// first and plays Red
func (g *Game) StartGame(playerOne, playerTwo string) error {
	if g.hasHistory() {
		return fmt.Errorf("%w: game %q", ErrGameAlreadyStarted, g.id)
	}
	if playerOne == "" || playerTwo == "" {
		return fmt.Errorf("%w: player ids are required", ErrInvalidPlayers)
	}
	if playerOne == playerTwo {
		return fmt.Errorf("%w: players must differ", ErrInvalidPlayers)
	}
	return g.raise(GameStarted{
		GameID:    g.id,
		PlayerOne: playerOne,
		PlayerTwo: playerTwo,
	})
}

// MakeMove validates the move against the current projection and raises
// MoveMade, followed by GameEnded if the move finishes the game. Nothing is
// raised when validation fails
func (g *Game) MakeMove(m Move) error {
	switch g.Status() {
	case Unstarted:
		return invalidMove("game %q has not started", g.id)
	case Finished:
		return invalidMove("game %q is finished", g.id)
	}
	if !m.Column.Valid() {
		return fmt.Errorf("%w: %w: %q",
			ErrInvalidMove, ErrInvalidColumn, string(m.Column),
		)
	}
	if m.Player != g.state.nextPlayer {
		return invalidMove("player %q cannot move out of turn", m.Player)
	}
	if !g.state.board.HasCapacity(m.Column) {
		return fmt.Errorf("%w: %w: %s", ErrInvalidMove, ErrColumnFull, m.Column)
	}

	if err := g.raise(MoveMade{
		GameID:   g.id,
		PlayerID: m.Player,
		Column:   m.Column,
	}); err != nil {
		return err
	}

	if res, ok := g.state.board.Result(); ok {
		return g.raise(GameEnded{GameID: g.id, Result: res})
	}
	return nil
}

// Apply folds an event into the projection without recording it
func (g *Game) Apply(ev DomainEvent) error {
	next, err := apply(g.state, ev)
	if err != nil {
		return err
	}
	g.state = next
	return nil
}

// LoadFromHistory replaces the committed events and rebuilds the projection
// by replaying them. Uncommitted events are left alone. On failure the Game
// is unchanged
func (g *Game) LoadFromHistory(evs []DomainEvent) error {
	state := newGameState()
	for i, ev := range evs {
		next, err := apply(state, ev)
		if err != nil {
			return fmt.Errorf("replay event %d: %w", i, err)
		}
		state = next
	}
	g.state = state
	g.committed = slices.Clone(evs)
	return nil
}

// Flush hands the uncommitted events to the Flusher and, if it succeeds,
// marks them committed
func (g *Game) Flush(f Flusher) (int, error) {
	count := len(g.uncommitted)
	if count == 0 {
		return 0, nil
	}
	if err := f(g.Version(), g.uncommitted); err != nil {
		return count, err
	}
	g.MarkCommitted()
	return count, nil
}

// MarkCommitted moves every uncommitted event to the committed history
func (g *Game) MarkCommitted() {
	g.committed = append(g.committed, g.uncommitted...)
	g.uncommitted = nil
}

// ID returns the game's identity
func (g *Game) ID() string {
	return g.id
}

func (g *Game) PlayerOne() string {
	return g.state.playerOne
}

func (g *Game) PlayerTwo() string {
	return g.state.playerTwo
}

// NextPlayer returns the player expected to move, or an empty string if the
// game is not in progress
func (g *Game) NextPlayer() string {
	return g.state.nextPlayer
}

// Result returns the outcome once the game is finished
func (g *Game) Result() (GameResult, bool) {
	return g.state.result, g.state.result != ""
}

func (g *Game) IsFinished() bool {
	return g.state.result != ""
}

// Status derives the lifecycle stage from the projection
func (g *Game) Status() Status {
	switch {
	case !g.state.started:
		return Unstarted
	case g.IsFinished():
		return Finished
	default:
		return InProgress
	}
}

// Board returns a copy of the board projection
func (g *Game) Board() BoardState {
	return g.state.board.State()
}

// TokenOf returns the token played by the given player
func (g *Game) TokenOf(player string) Token {
	return g.state.tokenFor(player)
}

// Committed returns the events that have been persisted
func (g *Game) Committed() []DomainEvent {
	return slices.Clone(g.committed)
}

// Uncommitted returns the events raised since the last Flush
func (g *Game) Uncommitted() []DomainEvent {
	return slices.Clone(g.uncommitted)
}

// Version returns the number of committed events
func (g *Game) Version() int64 {
	return int64(len(g.committed))
}

func (g *Game) hasHistory() bool {
	return len(g.committed) > 0 || len(g.uncommitted) > 0
}

func (g *Game) raise(ev DomainEvent) error {
	if err := g.Apply(ev); err != nil {
		return err
	}
	g.uncommitted = append(g.uncommitted, ev)
	return nil
}

// apply is the single projection function, shared by live commands and
// replay. It never mutates the incoming state
func apply(state gameState, ev DomainEvent) (gameState, error) {
	switch e := ev.(type) {
	case GameStarted:
		if state.started {
			return state, fmt.Errorf("%w: game started twice", ErrInvalidHistory)
		}
		state.playerOne = e.PlayerOne
		state.playerTwo = e.PlayerTwo
		state.nextPlayer = e.PlayerOne
		state.started = true
		state.board = NewBoard()
		return state, nil

	case MoveMade:
		switch {
		case !state.started:
			return state, fmt.Errorf("%w: move before start", ErrInvalidHistory)
		case state.result != "":
			return state, fmt.Errorf("%w: move after end", ErrInvalidHistory)
		case e.PlayerID != state.nextPlayer:
			return state, fmt.Errorf(
				"%w: move by %q out of turn", ErrInvalidHistory, e.PlayerID,
			)
		}
		board := state.board.Clone()
		if err := board.AddMove(e.Column, state.tokenFor(e.PlayerID)); err != nil {
			return state, err
		}
		state.board = board
		state.nextPlayer = state.otherPlayer(state.nextPlayer)
		return state, nil

	case GameEnded:
		switch {
		case !state.started:
			return state, fmt.Errorf("%w: end before start", ErrInvalidHistory)
		case state.result != "":
			return state, fmt.Errorf("%w: game ended twice", ErrInvalidHistory)
		}
		state.result = e.Result
		state.nextPlayer = ""
		return state, nil

	default:
		return state, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

func (s gameState) tokenFor(player string) Token {
	if player == s.playerOne {
		return Red
	}
	return Yellow
}

func (s gameState) otherPlayer(player string) string {
	if player == s.playerOne {
		return s.playerTwo
	}
	return s.playerOne
}
