package session

import (
	"context"
	"sync"
	"time"

	"github.com/mohammad-safakhou/neurohub/internal/llm"
)

type entry struct {
	msgs      []llm.Message
	expiresAt time.Time
}

type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

func NewInMemory(ttl time.Duration) *InMemory {
	return &InMemory{sessions: make(map[string]*entry), ttl: ttl, now: time.Now}
}

func (s *InMemory) Load(_ context.Context, id string) ([]llm.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok || s.now().After(e.expiresAt) {
		return nil, nil
	}
	return append([]llm.Message(nil), e.msgs...), nil
}

func (s *InMemory) Append(_ context.Context, id string, msgs ...llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	e, ok := s.sessions[id]
	if !ok || now.After(e.expiresAt) {
		e = &entry{}
		s.sessions[id] = e
	}
	e.msgs = append(e.msgs, msgs...)
	e.expiresAt = now.Add(s.ttl)
	s.sweep(now)
	return nil
}

// sweep drops expired sessions. Callers hold the write lock.
func (s *InMemory) sweep(now time.Time) {
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
