package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// QueryVectorCache memoizes query embeddings in Redis so repeated
// questions against the knowledge base skip the provider round trip.
// Only real-provider vectors are cached; fallback vectors would pin
// degraded results past a credential fix.
type QueryVectorCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewQueryVectorCache(client *redisv9.Client, ttl time.Duration) *QueryVectorCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryVectorCache{client: client, ttl: ttl}
}

func (c *QueryVectorCache) Get(ctx context.Context, question string) ([]float32, bool, error) {
	raw, err := c.client.Get(ctx, c.key(question)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get query vector failed: %w", err)
	}

	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached query vector failed: %w", err)
	}
	return vec, true, nil
}

func (c *QueryVectorCache) Set(ctx context.Context, question string, vec []float32) error {
	payload, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal query vector failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(question), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set query vector failed: %w", err)
	}
	return nil
}

func (c *QueryVectorCache) key(question string) string {
	return fmt.Sprintf("rag:qvec:%x", sha256.Sum256([]byte(question)))
}
