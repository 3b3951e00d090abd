// Package main provides an interactive terminal game of Connect Four that
// persists every move to the configured event store
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kode4food/connect4"
	"github.com/kode4food/connect4/boltlog"
	"github.com/kode4food/connect4/pglog"
)

type (
	// store is an EventLog that owns a connection
	store interface {
		connect4.EventLog
		io.Closer
	}

	streamLister interface {
		ListStreams(ctx context.Context) ([]string, error)
	}
)

func main() {
	var gameID string
	var list bool

	flag.StringVar(&gameID, "game", "", "resume the game with this id")
	flag.BoolVar(&list, "list", false, "list stored games and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, gameID, list); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, gameID string, list bool) error {
	cfg, err := connect4.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer func() { _ = st.Close() }()

	if list {
		return listGames(ctx, st, os.Stdout)
	}

	hub := connect4.NewEventHub()
	defer func() { _ = hub.Close() }()

	consumer := hub.NewConsumer()
	defer func() { _ = consumer.Close() }()
	go watchEvents(consumer, logger)

	repo := connect4.NewEventRepository(st,
		connect4.WithEventHub(hub),
		connect4.WithCacheSize(cfg.CacheSize),
	)
	app := connect4.NewApp(repo,
		connect4.WithLogger(logger),
		connect4.WithMaxRetries(cfg.MaxRetries),
	)

	s := newSession(app, os.Stdin, os.Stdout)
	s.println("Welcome to a game of Connect Four!")
	s.println("Have fun...")
	s.println()

	if gameID == "" {
		if gameID, err = s.newGame(ctx); err != nil {
			return err
		}
	}
	return s.play(ctx, gameID)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func openStore(ctx context.Context, cfg connect4.StoreConfig) (store, error) {
	switch cfg.Backend {
	case connect4.BackendRedis:
		return connect4.NewRedisLog(ctx, cfg.Redis)
	case connect4.BackendBolt:
		return boltlog.Open(cfg.BoltPath)
	case connect4.BackendPostgres:
		return pglog.Open(ctx, cfg.PostgresDSN, 0)
	default:
		return nopCloser{connect4.NewMemoryLog()}, nil
	}
}

func listGames(ctx context.Context, st store, out io.Writer) error {
	lister, ok := st.(streamLister)
	if !ok {
		return errors.New("store cannot list games")
	}
	streams, err := lister.ListStreams(ctx)
	if err != nil {
		return err
	}
	for _, stream := range streams {
		if id, ok := connect4.GameIDFromStream(stream); ok {
			_, _ = fmt.Fprintln(out, id)
		}
	}
	return nil
}

// watchEvents traces every committed event until the consumer is closed
func watchEvents(c *connect4.Consumer, logger *zap.Logger) {
	dispatch := eventTracer(logger)
	for ev := range c.Receive() {
		if err := dispatch(ev); err != nil {
			logger.Warn("could not trace event",
				zap.String("stream", ev.Stream),
				zap.Int64("sequence", ev.Sequence),
				zap.Error(err),
			)
		}
	}
}

func eventTracer(logger *zap.Logger) connect4.Handler {
	return connect4.MakeDispatcher(map[connect4.EventType]connect4.Handler{
		connect4.GameStartedType: connect4.MakeHandler(
			func(ev *connect4.Event, data connect4.GameStarted) error {
				logger.Debug("game started",
					zap.String("game_id", data.GameID),
					zap.String("player_one", data.PlayerOne),
					zap.String("player_two", data.PlayerTwo),
				)
				return nil
			},
		),
		connect4.MoveMadeType: connect4.MakeHandler(
			func(ev *connect4.Event, data connect4.MoveMade) error {
				logger.Debug("move made",
					zap.String("game_id", data.GameID),
					zap.Int64("sequence", ev.Sequence),
					zap.String("player", data.PlayerID),
					zap.String("column", string(data.Column)),
				)
				return nil
			},
		),
		connect4.GameEndedType: connect4.MakeHandler(
			func(ev *connect4.Event, data connect4.GameEnded) error {
				logger.Debug("game ended",
					zap.String("game_id", data.GameID),
					zap.String("result", string(data.Result)),
				)
				return nil
			},
		),
	})
}

type nopCloser struct {
	*connect4.MemoryLog
}

func (nopCloser) Close() error { return nil }
