package session

import (
	"context"
	"testing"
	"time"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/llm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryAppendAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory(time.Hour)

	msgs, err := s.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, s.Append(ctx, "c1", llm.Message{Role: llm.RoleUser, Content: "hi"}))
	require.NoError(t, s.Append(ctx, "c1", llm.Message{Role: llm.RoleAssistant, Content: "hello"}))

	msgs, err = s.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Content)

	// callers get a copy
	msgs[0].Content = "changed"
	again, _ := s.Load(ctx, "c1")
	assert.Equal(t, "hi", again[0].Content)
}

func TestInMemoryExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewInMemory(time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Append(ctx, "c1", llm.Message{Role: llm.RoleUser, Content: "hi"}))
	now = now.Add(2 * time.Minute)

	msgs, err := s.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, s.Append(ctx, "c1", llm.Message{Role: llm.RoleUser, Content: "again"}))
	msgs, _ = s.Load(ctx, "c1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "again", msgs[0].Content)
}

func TestNewStoreFallsBackToMemory(t *testing.T) {
	s := NewStore(context.Background(), config.RedisConfig{}, zerolog.Nop())
	_, ok := s.(*InMemory)
	assert.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	s = NewStore(ctx, config.RedisConfig{Host: "127.0.0.1", Port: "1", Timeout: 100 * time.Millisecond}, zerolog.Nop())
	_, ok = s.(*InMemory)
	assert.True(t, ok)
}
