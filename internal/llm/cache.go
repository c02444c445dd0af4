package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// WithCache memoizes successful responses keyed by (stage, prompt, input)
// for ttl. Identical calls within one run hit the cache instead of the API.
func WithCache(size int, ttl time.Duration) Middleware {
	return func(next Client) Client {
		if size <= 0 {
			return next
		}
		c := expirable.NewLRU[string, json.RawMessage](size, nil, ttl)
		return &cached{next: next, lru: c}
	}
}

type cached struct {
	next Client
	lru  *expirable.LRU[string, json.RawMessage]
}

func (c *cached) Name() string { return c.next.Name() }
func (c *cached) Close() error { return c.next.Close() }

func (c *cached) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	key := cacheKey(StageFrom(ctx), prompt, input)
	if raw, ok := c.lru.Get(key); ok {
		return raw, nil
	}
	raw, err := c.next.GenerateJSON(ctx, prompt, input)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, raw)
	return raw, nil
}

func cacheKey(stage, prompt string, input any) string {
	h := sha256.New()
	h.Write([]byte(stage))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	in, _ := json.Marshal(input)
	h.Write(in)
	return hex.EncodeToString(h.Sum(nil))
}
