package connect4

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type (
	// RedisLog is an EventLog that keeps each stream in a Redis list.
	// Appends run as a Lua script so the precondition check and the push
	// are atomic
	RedisLog struct {
		client          *redis.Client
		prefix          string
		appendEventsLua *redis.Script
		getEventsLua    *redis.Script
	}
)

const (
	RedisConnectTimeout = 5 * time.Second

	eventsSuffix = ":events"
)

var (
	ErrUnexpectedLuaResult = errors.New("unexpected result from Lua script")

	_ EventLog = (*RedisLog)(nil)
)

// NewRedisLog connects to Redis and verifies the connection
func NewRedisLog(ctx context.Context, cfg RedisConfig) (*RedisLog, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, RedisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisLog{
		client:          client,
		prefix:          cfg.Prefix,
		appendEventsLua: redis.NewScript(luaAppendEvents),
		getEventsLua:    redis.NewScript(luaGetEvents),
	}, nil
}

func (l *RedisLog) Close() error {
	return l.client.Close()
}

func (l *RedisLog) AppendEvents(
	ctx context.Context, stream string, expect Expectation, evs []*Event,
) error {
	keys := []string{l.buildKey(stream)}
	args := []any{expect.Mode(), expect.Version()}

	for _, ev := range evs {
		eventData, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		args = append(args, string(eventData))
	}

	result, err := l.appendEventsLua.Run(ctx, l.client, keys, args...).Result()
	if err != nil {
		return err
	}

	res, ok := result.([]any)
	if !ok || len(res) < 2 {
		return ErrUnexpectedLuaResult
	}
	success, _ := res[0].(int64)
	length, _ := res[1].(int64)

	if success == 0 {
		return NewPreconditionError(stream, expect, length)
	}
	return nil
}

func (l *RedisLog) GetEvents(
	ctx context.Context, stream string, fromSeq int64,
) ([]*Event, error) {
	if fromSeq < 0 {
		fromSeq = 0
	}
	keys := []string{l.buildKey(stream)}

	result, err := l.getEventsLua.Run(ctx, l.client, keys, fromSeq).Result()
	if err != nil {
		return nil, err
	}

	res, ok := result.([]any)
	if !ok || len(res) == 0 {
		return nil, ErrUnexpectedLuaResult
	}
	if length, _ := res[0].(int64); length == 0 {
		return nil, ErrStreamNotFound
	}
	if len(res) < 2 {
		return nil, ErrUnexpectedLuaResult
	}

	raw, ok := res[1].([]any)
	if !ok {
		return nil, ErrUnexpectedLuaResult
	}
	return l.unmarshalEvents(fromSeq, raw)
}

// ListStreams returns the names of every stream under the log's prefix
func (l *RedisLog) ListStreams(ctx context.Context) ([]string, error) {
	searchKey := fmt.Sprintf("%s:*%s", l.prefix, eventsSuffix)

	keys, err := l.client.Keys(ctx, searchKey).Result()
	if err != nil {
		return nil, err
	}

	streams := make([]string, 0, len(keys))
	for _, key := range keys {
		trimmed := strings.TrimPrefix(key, l.prefix+":")
		streams = append(streams, strings.TrimSuffix(trimmed, eventsSuffix))
	}
	slices.Sort(streams)
	return streams, nil
}

func (l *RedisLog) buildKey(stream string) string {
	return fmt.Sprintf("%s:%s%s", l.prefix, stream, eventsSuffix)
}

func (l *RedisLog) unmarshalEvents(startSeq int64, data []any) ([]*Event, error) {
	events := make([]*Event, 0, len(data))
	for i, item := range data {
		str, ok := item.(string)
		if !ok {
			return nil, ErrUnexpectedLuaResult
		}
		ev := &Event{}
		if err := json.Unmarshal([]byte(str), ev); err != nil {
			return nil, err
		}
		ev.Sequence = startSeq + int64(i)
		events = append(events, ev)
	}
	return events, nil
}
