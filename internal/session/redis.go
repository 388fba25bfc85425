package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/llm"
	"github.com/redis/go-redis/v9"
)

// Redis stores each conversation as a list of JSON messages under
// session:<id>:messages. Every append refreshes the TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.Timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(id string) string { return fmt.Sprintf("session:%s:messages", id) }

func (s *Redis) Load(ctx context.Context, id string) ([]llm.Message, error) {
	vals, err := s.client.LRange(ctx, key(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	out := make([]llm.Message, 0, len(vals))
	for _, v := range vals {
		var m llm.Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", id, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Redis) Append(ctx context.Context, id string, msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	vals := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		vals = append(vals, b)
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key(id), vals...)
	pipe.Expire(ctx, key(id), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append session %s: %w", id, err)
	}
	return nil
}

func (s *Redis) Close() error { return s.client.Close() }
