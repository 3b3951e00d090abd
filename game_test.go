package connect4_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/connect4"
)

const (
	alice = "alice"
	bob   = "bob"
)

// tieColumns drops every token of tiedState in turn order, starting with
// Red. Each X column is paired with a Z column so colors alternate
var tieColumns = []connect4.Column{
	"A", "C", "C", "A", "A", "C", "C", "A", "A", "C", "C", "A",
	"B", "D", "D", "B", "B", "D", "D", "B", "B", "D", "D", "B",
	"F", "G", "G", "F", "F", "G", "G", "F", "F", "G", "G", "F",
	"E", "E", "E", "E", "E", "E",
}

func startedGame(t *testing.T) *connect4.Game {
	t.Helper()
	g := connect4.NewGameWithID("g1")
	require.NoError(t, g.StartGame(alice, bob))
	return g
}

// playAll makes alternating moves starting with player one
func playAll(t *testing.T, g *connect4.Game, cols ...connect4.Column) {
	t.Helper()
	for i, col := range cols {
		player := alice
		if i%2 == 1 {
			player = bob
		}
		require.NoError(t, g.MakeMove(connect4.Move{Player: player, Column: col}),
			"move %d", i,
		)
	}
}

func eventTypes(evs []connect4.DomainEvent) []connect4.EventType {
	return connect4.DomainEventTypes(evs)
}

func TestNewGame(t *testing.T) {
	g := connect4.NewGame()
	assert.NotEmpty(t, g.ID())
	assert.NotEqual(t, g.ID(), connect4.NewGame().ID())
	assert.Equal(t, connect4.Unstarted, g.Status())
	assert.Empty(t, g.NextPlayer())
	assert.False(t, g.IsFinished())
	assert.Equal(t, int64(0), g.Version())
}

func TestStartGame(t *testing.T) {
	g := startedGame(t)

	assert.Equal(t, connect4.InProgress, g.Status())
	assert.Equal(t, alice, g.PlayerOne())
	assert.Equal(t, bob, g.PlayerTwo())
	assert.Equal(t, alice, g.NextPlayer())
	assert.Equal(t, connect4.Red, g.TokenOf(alice))
	assert.Equal(t, connect4.Yellow, g.TokenOf(bob))

	evs := g.Uncommitted()
	require.Len(t, evs, 1)
	assert.Equal(t, connect4.GameStarted{
		GameID: "g1", PlayerOne: alice, PlayerTwo: bob,
	}, evs[0])
}

func TestStartGameTwice(t *testing.T) {
	g := startedGame(t)
	err := g.StartGame("carol", "dave")
	assert.ErrorIs(t, err, connect4.ErrGameAlreadyStarted)
	assert.Len(t, g.Uncommitted(), 1)
	assert.Equal(t, alice, g.PlayerOne())
}

func TestStartGameInvalidPlayers(t *testing.T) {
	for _, players := range [][2]string{
		{"", bob}, {alice, ""}, {alice, alice},
	} {
		g := connect4.NewGame()
		err := g.StartGame(players[0], players[1])
		assert.ErrorIs(t, err, connect4.ErrInvalidPlayers)
		assert.Empty(t, g.Uncommitted())
		assert.Equal(t, connect4.Unstarted, g.Status())
	}
}

func TestMakeMove(t *testing.T) {
	g := startedGame(t)
	err := g.MakeMove(connect4.Move{Player: alice, Column: connect4.ColumnD})
	require.NoError(t, err)

	assert.Equal(t, bob, g.NextPlayer())
	assert.Equal(t, []connect4.Token{connect4.Red}, g.Board()[connect4.ColumnD])

	evs := g.Uncommitted()
	require.Len(t, evs, 2)
	assert.Equal(t, connect4.MoveMade{
		GameID: "g1", PlayerID: alice, Column: connect4.ColumnD,
	}, evs[1])
}

func TestMakeMoveBeforeStart(t *testing.T) {
	g := connect4.NewGame()
	err := g.MakeMove(connect4.Move{Player: alice, Column: connect4.ColumnA})
	assert.ErrorIs(t, err, connect4.ErrInvalidMove)
	assert.Empty(t, g.Uncommitted())
}

func TestMakeMoveOutOfTurn(t *testing.T) {
	g := startedGame(t)
	err := g.MakeMove(connect4.Move{Player: bob, Column: connect4.ColumnA})
	assert.ErrorIs(t, err, connect4.ErrInvalidMove)
	assert.Len(t, g.Uncommitted(), 1)

	err = g.MakeMove(connect4.Move{Player: "mallory", Column: connect4.ColumnA})
	assert.ErrorIs(t, err, connect4.ErrInvalidMove)
	assert.Len(t, g.Uncommitted(), 1)
	assert.Equal(t, alice, g.NextPlayer())
}

func TestMakeMoveInvalidColumn(t *testing.T) {
	g := startedGame(t)
	err := g.MakeMove(connect4.Move{Player: alice, Column: "H"})
	assert.ErrorIs(t, err, connect4.ErrInvalidMove)
	assert.ErrorIs(t, err, connect4.ErrInvalidColumn)
	assert.Len(t, g.Uncommitted(), 1)
}

func TestMakeMoveFullColumn(t *testing.T) {
	for _, col := range connect4.Columns {
		t.Run(string(col), func(t *testing.T) {
			g := startedGame(t)
			playAll(t, g, col, col, col, col, col, col)

			err := g.MakeMove(connect4.Move{Player: alice, Column: col})
			assert.ErrorIs(t, err, connect4.ErrInvalidMove)
			assert.ErrorIs(t, err, connect4.ErrColumnFull)
			assert.Len(t, g.Uncommitted(), 7)
			assert.Equal(t, alice, g.NextPlayer())
			assert.False(t, g.IsFinished())
		})
	}
}

func TestVerticalWin(t *testing.T) {
	g := startedGame(t)
	playAll(t, g, "A", "B", "A", "B", "A", "B", "A")

	assert.True(t, g.IsFinished())
	assert.Equal(t, connect4.Finished, g.Status())
	assert.Empty(t, g.NextPlayer())

	res, ok := g.Result()
	assert.True(t, ok)
	assert.Equal(t, connect4.PlayerOneWon, res)

	types := eventTypes(g.Uncommitted())
	assert.Len(t, types, 9)
	assert.Equal(t, connect4.GameEndedType, types[8])
	assert.Equal(t, connect4.GameEnded{
		GameID: "g1", Result: connect4.PlayerOneWon,
	}, g.Uncommitted()[8])

	err := g.MakeMove(connect4.Move{Player: bob, Column: connect4.ColumnB})
	assert.ErrorIs(t, err, connect4.ErrInvalidMove)
	assert.Len(t, g.Uncommitted(), 9)
}

func TestHorizontalWin(t *testing.T) {
	g := startedGame(t)
	playAll(t, g, "A", "A", "B", "B", "C", "C", "D")

	res, ok := g.Result()
	assert.True(t, ok)
	assert.Equal(t, connect4.PlayerOneWon, res)
	assert.Equal(t,
		[]connect4.Token{connect4.Red, connect4.Yellow},
		g.Board()[connect4.ColumnC],
	)
}

func TestPlayerTwoWins(t *testing.T) {
	g := startedGame(t)
	playAll(t, g, "A", "B", "A", "B", "A", "B", "G", "B")

	res, ok := g.Result()
	assert.True(t, ok)
	assert.Equal(t, connect4.PlayerTwoWon, res)
}

func TestTiedGame(t *testing.T) {
	g := startedGame(t)
	playAll(t, g, tieColumns...)

	res, ok := g.Result()
	assert.True(t, ok)
	assert.Equal(t, connect4.Tied, res)
	assert.Equal(t, tiedState(), g.Board())

	types := eventTypes(g.Uncommitted())
	assert.Len(t, types, 44)
	assert.Equal(t, connect4.GameEndedType, types[43])
}

func TestReplayMatchesLiveGame(t *testing.T) {
	live := startedGame(t)
	playAll(t, live, "D", "D", "E", "C", "F", "G", "B")

	replayed := connect4.NewGameWithID("g1")
	require.NoError(t, replayed.LoadFromHistory(live.Uncommitted()))

	assert.Equal(t, live.Board(), replayed.Board())
	assert.Equal(t, live.NextPlayer(), replayed.NextPlayer())
	assert.Equal(t, live.Status(), replayed.Status())
	assert.Equal(t, int64(8), replayed.Version())
	assert.Empty(t, replayed.Uncommitted())
}

func TestLoadFromHistoryKeepsUncommitted(t *testing.T) {
	g := startedGame(t)
	pending := g.Uncommitted()

	err := g.LoadFromHistory([]connect4.DomainEvent{
		connect4.GameStarted{GameID: "g1", PlayerOne: alice, PlayerTwo: bob},
	})
	require.NoError(t, err)
	assert.Equal(t, pending, g.Uncommitted())
	assert.Equal(t, int64(1), g.Version())
}

func TestLoadFromHistoryFailure(t *testing.T) {
	g := startedGame(t)
	playAll(t, g, "A")
	before := g.Board()

	err := g.LoadFromHistory([]connect4.DomainEvent{
		connect4.MoveMade{GameID: "g1", PlayerID: alice, Column: "A"},
	})
	assert.ErrorIs(t, err, connect4.ErrInvalidHistory)
	assert.Equal(t, before, g.Board())
	assert.Equal(t, bob, g.NextPlayer())

	err = g.LoadFromHistory([]connect4.DomainEvent{
		connect4.GameStarted{GameID: "g1", PlayerOne: alice, PlayerTwo: bob},
		connect4.GameStarted{GameID: "g1", PlayerOne: alice, PlayerTwo: bob},
	})
	assert.ErrorIs(t, err, connect4.ErrInvalidHistory)
}

func TestLoadFromHistoryRejectsInvalidSequences(t *testing.T) {
	started := connect4.GameStarted{GameID: "g1", PlayerOne: alice, PlayerTwo: bob}
	ended := connect4.GameEnded{GameID: "g1", Result: connect4.Tied}
	moveBy := func(player string) connect4.MoveMade {
		return connect4.MoveMade{GameID: "g1", PlayerID: player, Column: "A"}
	}

	tests := []struct {
		name    string
		history []connect4.DomainEvent
	}{
		{"move after end", []connect4.DomainEvent{
			started, ended, moveBy(bob), moveBy(bob),
		}},
		{"end after end", []connect4.DomainEvent{started, ended, ended}},
		{"player two first", []connect4.DomainEvent{started, moveBy(bob)}},
		{"same player twice", []connect4.DomainEvent{
			started, moveBy(alice), moveBy(alice),
		}},
		{"unknown player", []connect4.DomainEvent{started, moveBy("mallory")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := connect4.NewGameWithID("g1")
			err := g.LoadFromHistory(tc.history)
			assert.ErrorIs(t, err, connect4.ErrInvalidHistory)
			assert.Equal(t, connect4.Unstarted, g.Status())
			assert.Empty(t, g.Board()[connect4.ColumnA])
			assert.Zero(t, g.Version())
		})
	}

	g := connect4.NewGameWithID("g1")
	require.NoError(t, g.LoadFromHistory([]connect4.DomainEvent{started, ended}))
	assert.Equal(t, connect4.Finished, g.Status())
	assert.Empty(t, g.NextPlayer())
}

func TestApplyUnknownEvent(t *testing.T) {
	g := startedGame(t)
	err := g.Apply(nil)
	assert.ErrorIs(t, err, connect4.ErrUnknownEvent)

	err = g.LoadFromHistory([]connect4.DomainEvent{nil})
	assert.ErrorIs(t, err, connect4.ErrUnknownEvent)
}

func TestFlush(t *testing.T) {
	g := startedGame(t)
	playAll(t, g, "A")

	var gotVersion int64
	var got []connect4.DomainEvent
	n, err := g.Flush(func(v int64, evs []connect4.DomainEvent) error {
		gotVersion = v
		got = evs
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(0), gotVersion)
	assert.Len(t, got, 2)
	assert.Empty(t, g.Uncommitted())
	assert.Equal(t, int64(2), g.Version())

	n, err = g.Flush(func(int64, []connect4.DomainEvent) error {
		t.Fatal("nothing to flush")
		return nil
	})
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlushFailureKeepsEvents(t *testing.T) {
	g := startedGame(t)
	_, err := g.Flush(func(int64, []connect4.DomainEvent) error {
		return connect4.ErrPrecondition
	})
	assert.ErrorIs(t, err, connect4.ErrPrecondition)
	assert.Len(t, g.Uncommitted(), 1)
	assert.Equal(t, int64(0), g.Version())
}

func TestMarkCommitted(t *testing.T) {
	g := startedGame(t)
	g.MarkCommitted()
	assert.Empty(t, g.Uncommitted())
	assert.Len(t, g.Committed(), 1)
	assert.Equal(t, int64(1), g.Version())

	err := g.StartGame(alice, bob)
	assert.ErrorIs(t, err, connect4.ErrGameAlreadyStarted)
}
