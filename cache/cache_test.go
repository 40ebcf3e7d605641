package cache

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/bandpress/cache/memory"
	"github.com/anoixa/bandpress/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func TestKeyBuilder(t *testing.T) {
	kb := NewKeyBuilder("user")
	assert.Equal(t, "user", kb.Build())
	assert.Equal(t, "user:a:b", kb.Build("a", "b"))
	assert.Equal(t, "user:42", kb.BuildID(uint(42)))
	assert.Equal(t, "user:7", User.BuildID(7))
}

func TestMemory_SetGetDelete(t *testing.T) {
	p, err := memory.NewMemory(memory.DefaultConfig())
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	var provider Provider = p

	var got cachedUser
	assert.True(t, IsCacheMiss(provider.Get(ctx, "user:1", &got)))

	require.NoError(t, provider.Set(ctx, "user:1", cachedUser{ID: 1, Username: "alice"}, time.Minute))
	require.NoError(t, provider.Get(ctx, "user:1", &got))
	assert.Equal(t, cachedUser{ID: 1, Username: "alice"}, got)

	ok, err := provider.Exists(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, provider.Delete(ctx, "user:1"))
	assert.True(t, IsCacheMiss(provider.Get(ctx, "user:1", &got)))
	assert.NoError(t, provider.Health(ctx))
	assert.Equal(t, "memory", provider.Name())
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(&config.Config{CacheType: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", p.Name())
	_ = p.Close()

	// Redis 连不上时回退到内存缓存
	p, err = NewProvider(&config.Config{CacheType: "redis", CacheRedisAddr: "127.0.0.1:1"})
	require.NoError(t, err)
	assert.Equal(t, "memory", p.Name())
	_ = p.Close()

	_, err = NewProvider(&config.Config{CacheType: "memcached"})
	assert.Error(t, err)
}
