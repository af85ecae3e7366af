package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(t.TempDir())
	key := cache.Key("https://api.example.com/tasks", "tok")

	assert.Empty(t, cache.GetETag(key))
	assert.Nil(t, cache.GetBody(key))

	require.NoError(t, cache.Set(key, []byte(`[{"id":1}]`), `"abc"`))
	assert.Equal(t, `"abc"`, cache.GetETag(key))
	assert.JSONEq(t, `[{"id":1}]`, string(cache.GetBody(key)))
}

func TestCacheKeyVariesWithToken(t *testing.T) {
	cache := NewCache(t.TempDir())

	a := cache.Key("https://api.example.com/tasks", "alice")
	b := cache.Key("https://api.example.com/tasks", "bob")
	assert.NotEqual(t, a, b, "responses must not leak across logins")
}

func TestCacheDisabledWithEmptyDir(t *testing.T) {
	cache := NewCache("")
	key := cache.Key("url", "tok")

	require.NoError(t, cache.Set(key, []byte(`{}`), `"x"`))
	assert.Empty(t, cache.GetETag(key))
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(t.TempDir())
	key := cache.Key("url", "tok")
	require.NoError(t, cache.Set(key, []byte(`{}`), `"x"`))

	require.NoError(t, cache.Clear())
	assert.Empty(t, cache.GetETag(key))
}
