package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/redis/go-redis/v9"
)

const (
	artifactKeyPrefix = "studio:artifact:" // Artifact JSON: studio:artifact:{session}:{id}
	sessionListPrefix = "studio:session:"  // Ordered artifact ids: studio:session:{session}:artifacts
	sessionSetKey     = "studio:sessions"  // Set of known sessions
	collectionTTL     = 7 * 24 * time.Hour // TTL for collection data (7 days)
	maxMergeAttempts  = 5                  // optimistic retries when a watched key changes
)

// RedisCollection handles Redis operations for artifact collections
type RedisCollection struct {
	client *redis.Client

	// beforeMergeWrite runs between the read and the write of MergeMetadata.
	beforeMergeWrite func()
}

// NewRedisCollection creates a new RedisCollection
func NewRedisCollection(client *redis.Client) *RedisCollection {
	return &RedisCollection{client: client}
}

// Put stores a new artifact and appends it to the session order
func (r *RedisCollection) Put(ctx context.Context, session string, a *domain.Artifact) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.artifactKey(session, a.ID), data, collectionTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}
	if !ok {
		return domain.ErrArtifactExists
	}

	listKey := r.sessionListKey(session)
	pipe := r.client.Pipeline()
	pipe.RPush(ctx, listKey, a.ID)
	pipe.Expire(ctx, listKey, collectionTTL)
	pipe.SAdd(ctx, sessionSetKey, session)

	if _, err := pipe.Exec(ctx); err != nil {
		r.client.Del(ctx, r.artifactKey(session, a.ID))
		return fmt.Errorf("failed to index artifact: %w", err)
	}
	return nil
}

// Get retrieves an artifact by its ID
func (r *RedisCollection) Get(ctx context.Context, session, id string) (*domain.Artifact, error) {
	data, err := r.client.Get(ctx, r.artifactKey(session, id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	var a domain.Artifact
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	return &a, nil
}

// List returns the session's artifacts in insertion order. Ids whose data has
// expired are skipped.
func (r *RedisCollection) List(ctx context.Context, session string) ([]domain.Artifact, error) {
	ids, err := r.client.LRange(ctx, r.sessionListKey(session), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	out := make([]domain.Artifact, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.artifactKey(session, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var a domain.Artifact
		if err := json.Unmarshal([]byte(s), &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

// MergeMetadata merges keys into the artifact's metadata. A concurrent write to
// the same artifact restarts the merge; after maxMergeAttempts it gives up with
// ErrUpdateConflict.
func (r *RedisCollection) MergeMetadata(ctx context.Context, session, id string, metadata map[string]interface{}) (*domain.Artifact, error) {
	key := r.artifactKey(session, id)
	for attempt := 0; attempt < maxMergeAttempts; attempt++ {
		out, err := r.mergeOnce(ctx, key, metadata)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return out, err
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUpdateConflict, id)
}

func (r *RedisCollection) mergeOnce(ctx context.Context, key string, metadata map[string]interface{}) (*domain.Artifact, error) {
	var out *domain.Artifact

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return domain.ErrArtifactNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get artifact: %w", err)
		}

		var a domain.Artifact
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return fmt.Errorf("failed to unmarshal artifact: %w", err)
		}
		if a.Metadata == nil {
			a.Metadata = make(map[string]interface{}, len(metadata))
		}
		for k, v := range metadata {
			a.Metadata[k] = v
		}
		updated, err := json.Marshal(&a)
		if err != nil {
			return fmt.Errorf("failed to marshal artifact: %w", err)
		}
		if r.beforeMergeWrite != nil {
			r.beforeMergeWrite()
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, updated, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to update artifact: %w", err)
		}
		out = &a
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sessions lists every session that has stored an artifact
func (r *RedisCollection) Sessions(ctx context.Context) ([]string, error) {
	sessions, err := r.client.SMembers(ctx, sessionSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Strings(sessions)
	return sessions, nil
}

// Helper methods for key generation
func (r *RedisCollection) artifactKey(session, id string) string {
	return fmt.Sprintf("%s%s:%s", artifactKeyPrefix, session, id)
}

func (r *RedisCollection) sessionListKey(session string) string {
	return fmt.Sprintf("%s%s:artifacts", sessionListPrefix, session)
}
