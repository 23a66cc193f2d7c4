package fusionauth_test

import (
	"context"
	"testing"
	"time"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip before expiry", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		cache := fusionauth.NewMemoryCache()
		cache.Now = clock.Now

		require.NoError(t, cache.Save(ctx, "tok", time.Second))

		tok, ok, err := cache.Load(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "tok", tok)
	})

	t.Run("expiry purges and stays purged", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		cache := fusionauth.NewMemoryCache()
		cache.Now = clock.Now

		require.NoError(t, cache.Save(ctx, "tok", time.Second))
		clock.Advance(time.Second) // now == expiry counts as expired

		_, ok, err := cache.Load(ctx)
		require.NoError(t, err)
		require.False(t, ok)

		clock.Advance(-time.Hour) // even going back in time, the entry is gone
		_, ok, err = cache.Load(ctx)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		cache := fusionauth.NewMemoryCache()
		require.NoError(t, cache.Save(ctx, "tok", fusionauth.DefaultTokenTTL))
		require.NoError(t, cache.Clear(ctx))

		tok, ok, err := cache.Load(ctx)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, tok)
	})

	t.Run("empty cache", func(t *testing.T) {
		cache := fusionauth.NewMemoryCache()
		_, ok, err := cache.Load(ctx)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("save overwrites", func(t *testing.T) {
		cache := fusionauth.NewMemoryCache()
		require.NoError(t, cache.Save(ctx, "a", time.Hour))
		require.NoError(t, cache.Save(ctx, "b", time.Hour))

		tok, ok, _ := cache.Load(ctx)
		require.True(t, ok)
		require.Equal(t, "b", tok)
	})
}
