package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// SessionStore persists session snapshots between webhook deliveries.
// Load returns (nil, nil) for a sender with no stored session.
type SessionStore interface {
	Load(ctx context.Context, senderID string) (*SessionState, error)
	Save(ctx context.Context, senderID string, state *SessionState) error
}

// MemoryStore keeps sessions in process memory. It is the default store;
// snapshots are deep-copied through JSON so callers never alias stored
// transcripts.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, senderID string) (*SessionState, error) {
	s.mu.RLock()
	data, ok := s.states[senderID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("assistant: failed to decode stored session: %w", err)
	}
	return &state, nil
}

func (s *MemoryStore) Save(_ context.Context, senderID string, state *SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("assistant: failed to encode session: %w", err)
	}
	s.mu.Lock()
	s.states[senderID] = data
	s.mu.Unlock()
	return nil
}

// RedisStore keeps session snapshots in Redis with a TTL, so a restarted
// process picks conversations back up where they stopped.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("assistant: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("receptionist.internal.assistant.store"),
	}
}

func (s *RedisStore) Load(ctx context.Context, senderID string) (*SessionState, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(senderID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("assistant: failed to load session: %w", err)
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("assistant: failed to decode session: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, senderID string, state *SessionState) error {
	ctx, span := s.tracer.Start(ctx, "assistant.save_session")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: failed to encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(senderID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: failed to persist session: %w", err)
	}
	return nil
}

func sessionKey(senderID string) string {
	return fmt.Sprintf("session:%s", senderID)
}
