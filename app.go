package connect4

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type (
	// App is the application service that turns commands into aggregate
	// operations and persistence calls
	App struct {
		repo       Repository
		log        *zap.Logger
		maxRetries int
	}

	// AppOption configures an App
	AppOption func(*App)

	// GameState is a read-only snapshot of a game. Its JSON form always
	// carries next_player and result, as null when they are unset
	GameState struct {
		ID         string
		PlayerOne  string
		PlayerTwo  string
		NextPlayer string
		IsFinished bool
		Result     GameResult
		Board      BoardState
	}

	gameStateJSON struct {
		ID         string      `json:"id"`
		PlayerOne  string      `json:"player_one"`
		PlayerTwo  string      `json:"player_two"`
		NextPlayer *string     `json:"next_player"`
		IsFinished bool        `json:"is_finished"`
		Result     *GameResult `json:"result"`
		Board      BoardState  `json:"board"`
	}
)

// WithLogger sets the logger used for command tracing
func WithLogger(log *zap.Logger) AppOption {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMaxRetries bounds how often MakeMove re-reads a game after losing a
// concurrent append
func WithMaxRetries(n int) AppOption {
	return func(a *App) {
		if n > 0 {
			a.maxRetries = n
		}
	}
}

// NewApp creates an App that stores games in the Repository
func NewApp(repo Repository, opts ...AppOption) *App {
	a := &App{
		repo:       repo,
		log:        zap.NewNop(),
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateGame starts a new game between two players and returns its id
func (a *App) CreateGame(
	ctx context.Context, playerOne, playerTwo string,
) (string, error) {
	g := NewGame()
	if err := g.StartGame(playerOne, playerTwo); err != nil {
		return "", err
	}
	if err := a.repo.Add(ctx, g); err != nil {
		a.log.Warn("could not persist new game",
			zap.String("game_id", g.ID()),
			zap.Error(err),
		)
		return "", err
	}

	a.log.Info("game created",
		zap.String("game_id", g.ID()),
		zap.String("player_one", playerOne),
		zap.String("player_two", playerTwo),
	)
	return g.ID(), nil
}

// MakeMove loads the game, applies the move, and persists the resulting
// events. When another writer appended first, the game is re-read and the
// move validated again
func (a *App) MakeMove(
	ctx context.Context, gameID string, m Move,
) (GameState, error) {
	for attempt := range a.maxRetries {
		g, err := a.repo.Get(ctx, gameID)
		if err != nil {
			return GameState{}, err
		}

		if err := g.MakeMove(m); err != nil {
			a.log.Debug("move rejected",
				zap.String("game_id", gameID),
				zap.String("player", m.Player),
				zap.String("column", string(m.Column)),
				zap.Error(err),
			)
			return GameState{}, err
		}
		raised := DomainEventTypes(g.Uncommitted())

		err = a.repo.Update(ctx, g)
		if err == nil {
			a.log.Debug("move made",
				zap.String("game_id", gameID),
				zap.String("player", m.Player),
				zap.String("column", string(m.Column)),
				zap.Any("events", raised),
			)
			if res, ok := g.Result(); ok {
				a.log.Info("game finished",
					zap.String("game_id", gameID),
					zap.String("result", string(res)),
				)
			}
			return Snapshot(g), nil
		}

		if !errors.Is(err, ErrPrecondition) {
			return GameState{}, err
		}
		a.log.Warn("concurrent append, retrying move",
			zap.String("game_id", gameID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return GameState{}, ErrMaxRetriesExceeded
}

// GetGame returns a snapshot of the game's current state
func (a *App) GetGame(ctx context.Context, gameID string) (GameState, error) {
	g, err := a.repo.Get(ctx, gameID)
	if err != nil {
		return GameState{}, err
	}
	return Snapshot(g), nil
}

// Snapshot captures the read model of a Game
func Snapshot(g *Game) GameState {
	res, _ := g.Result()
	return GameState{
		ID:         g.ID(),
		PlayerOne:  g.PlayerOne(),
		PlayerTwo:  g.PlayerTwo(),
		NextPlayer: g.NextPlayer(),
		IsFinished: g.IsFinished(),
		Result:     res,
		Board:      g.Board(),
	}
}

// MarshalJSON encodes the snapshot for external readers
func (s GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameStateJSON{
		ID:         s.ID,
		PlayerOne:  s.PlayerOne,
		PlayerTwo:  s.PlayerTwo,
		NextPlayer: lo.EmptyableToPtr(s.NextPlayer),
		IsFinished: s.IsFinished,
		Result:     lo.EmptyableToPtr(s.Result),
		Board:      s.Board,
	})
}

// UnmarshalJSON decodes a snapshot written by MarshalJSON
func (s *GameState) UnmarshalJSON(data []byte) error {
	var w gameStateJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = GameState{
		ID:         w.ID,
		PlayerOne:  w.PlayerOne,
		PlayerTwo:  w.PlayerTwo,
		NextPlayer: lo.FromPtr(w.NextPlayer),
		IsFinished: w.IsFinished,
		Result:     lo.FromPtr(w.Result),
		Board:      w.Board,
	}
	return nil
}
