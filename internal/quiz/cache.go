package quiz

import (
	"context"
	"encoding/json"
)

// ByteCache is the small cache surface the store decorator needs.
// pkg/cache.Redis satisfies it.
type ByteCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte) error
	Del(ctx context.Context, key string) error
}

// cachedStore decorates a Store with read-through caching of quiz fetches.
// Every write invalidates the quiz's cache entry. Attempts are never cached.
type cachedStore struct {
	Store
	cache ByteCache
}

func NewCachedStore(inner Store, cache ByteCache) Store {
	return &cachedStore{Store: inner, cache: cache}
}

func cacheKey(id string) string { return "quiz:" + id }

func (c *cachedStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	if data, ok := c.cache.Get(ctx, cacheKey(id)); ok {
		var q Quiz
		if err := json.Unmarshal(data, &q); err == nil {
			return q, nil
		}
	}
	q, err := c.Store.GetQuiz(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	if data, err := json.Marshal(q); err == nil {
		_ = c.cache.Set(ctx, cacheKey(id), data)
	}
	return q, nil
}

func (c *cachedStore) PutQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	out, err := c.Store.PutQuiz(ctx, q)
	if err == nil {
		_ = c.cache.Del(ctx, cacheKey(out.ID))
	}
	return out, err
}

func (c *cachedStore) SetPublished(ctx context.Context, id string, published bool, by string) (Quiz, error) {
	out, err := c.Store.SetPublished(ctx, id, published, by)
	if err == nil {
		_ = c.cache.Del(ctx, cacheKey(id))
	}
	return out, err
}

func (c *cachedStore) DeleteQuiz(ctx context.Context, id string) error {
	err := c.Store.DeleteQuiz(ctx, id)
	if err == nil {
		_ = c.cache.Del(ctx, cacheKey(id))
	}
	return err
}
