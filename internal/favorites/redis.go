package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
)

const keyPrefix = "favorites:"

// RedisSnapshots stores one Avro-encoded snapshot per session, expiring
// ttl after the last change.
type RedisSnapshots struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisSnapshots(client *redis.Client, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{client: client, ttl: ttl, now: time.Now}
}

func snapshotKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *RedisSnapshots) Load(ctx context.Context, sessionID string) ([]catalog.ProductView, error) {
	data, err := r.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("favorites snapshot get: %w", err)
	}

	s, items, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("favorites snapshot decode: %w", err)
	}
	if s.SessionID != sessionID {
		return nil, fmt.Errorf("favorites snapshot: session mismatch %q", s.SessionID)
	}
	return items, nil
}

func (r *RedisSnapshots) Save(ctx context.Context, sessionID string, items []catalog.ProductView) error {
	key := snapshotKey(sessionID)

	if len(items) == 0 {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("favorites snapshot del: %w", err)
		}
		return nil
	}

	data, err := encodeSnapshot(sessionID, r.now(), items)
	if err != nil {
		return fmt.Errorf("favorites snapshot encode: %w", err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("favorites snapshot set: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *RedisSnapshots) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
