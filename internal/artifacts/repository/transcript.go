package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/redis/go-redis/v9"
)

const transcriptKeyPrefix = "studio:transcript:" // Messages: studio:transcript:{session}

// Transcript is the per-session chat log.
type Transcript interface {
	Append(ctx context.Context, session string, msgs ...domain.Message) error
	List(ctx context.Context, session string) ([]domain.Message, error)
}

type MemoryTranscript struct {
	mu   sync.RWMutex
	logs map[string][]domain.Message
}

func NewMemoryTranscript() *MemoryTranscript {
	return &MemoryTranscript{logs: make(map[string][]domain.Message)}
}

func (m *MemoryTranscript) Append(_ context.Context, session string, msgs ...domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[session] = append(m.logs[session], msgs...)
	return nil
}

func (m *MemoryTranscript) List(_ context.Context, session string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Message, len(m.logs[session]))
	copy(out, m.logs[session])
	return out, nil
}

// RedisTranscript stores messages as JSON entries of a Redis list.
type RedisTranscript struct {
	client *redis.Client
}

func NewRedisTranscript(client *redis.Client) *RedisTranscript {
	return &RedisTranscript{client: client}
}

func (r *RedisTranscript) Append(ctx context.Context, session string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := transcriptKeyPrefix + session
	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, collectionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}
	return nil
}

func (r *RedisTranscript) List(ctx context.Context, session string) ([]domain.Message, error) {
	raw, err := r.client.LRange(ctx, transcriptKeyPrefix+session, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]domain.Message, 0, len(raw))
	for _, s := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(s), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}
