package fusionauth

import (
	"context"
	"sync"
	"time"
)

// TokenCache stores one fusion token with an absolute expiry.
//
// Load returns ok=false once now >= expiry and removes the entry; further
// Loads keep returning ok=false. A miss must be treated exactly like never
// having logged in.
type TokenCache interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	Load(ctx context.Context) (token string, ok bool, err error)
	Clear(ctx context.Context) error
}

// MemoryCache is an in-process TokenCache.
type MemoryCache struct {
	// Now defaults to time.Now.
	Now func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

var _ TokenCache = (*MemoryCache)(nil)

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Now: time.Now}
}

func (c *MemoryCache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *MemoryCache) Save(_ context.Context, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.expiresAt = c.now().Add(ttl)
	return nil
}

func (c *MemoryCache) Load(_ context.Context) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return "", false, nil
	}
	if !c.now().Before(c.expiresAt) {
		c.token = ""
		c.expiresAt = time.Time{}
		return "", false, nil
	}
	return c.token, true, nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.expiresAt = time.Time{}
	return nil
}
