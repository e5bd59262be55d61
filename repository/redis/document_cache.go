package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/repository"
)

type documentCache struct {
	client redislib.Cmdable
	prefix string
	ttl    time.Duration
}

// NewDocumentCache creates a Redis-backed read-through cache for documents.
func NewDocumentCache(client redislib.Cmdable, ttl time.Duration) repository.DocumentRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &documentCache{
		client: client,
		prefix: "document:",
		ttl:    ttl,
	}
}

func (r *documentCache) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return result, nil
}

func (r *documentCache) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return domain.ErrInvalidPayload
	}
	return r.client.Set(ctx, r.key(key), data, r.ttl).Err()
}

func (r *documentCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *documentCache) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
