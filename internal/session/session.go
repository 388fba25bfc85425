// Package session keeps agent conversation history keyed by context id.
package session

import (
	"context"
	"time"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/llm"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long an idle conversation is kept.
const DefaultTTL = 24 * time.Hour

// Store persists conversation history. Loading an unknown id yields an empty
// history, not an error.
type Store interface {
	Load(ctx context.Context, id string) ([]llm.Message, error)
	Append(ctx context.Context, id string, msgs ...llm.Message) error
}

// NewStore picks Redis when storage.redis is configured and reachable,
// otherwise an in-memory store.
func NewStore(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) Store {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if !cfg.Enabled() {
		return NewInMemory(ttl)
	}
	rs, err := NewRedis(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr()).Msg("redis unavailable; keeping sessions in memory")
		return NewInMemory(ttl)
	}
	return rs
}
