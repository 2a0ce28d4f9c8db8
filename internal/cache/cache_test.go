package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k1 := Key([]byte("ab"), []byte("c"))
	k2 := Key([]byte("a"), []byte("bc"))

	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, Key([]byte("ab"), []byte("c")))
	assert.Contains(t, k1, "revstat:v1:")
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, found := c.Get("k")
	assert.False(t, found)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	val, found := c.Get("k")
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, found = c.Get("k")
	assert.False(t, found)

	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Len())
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	key := Key([]byte("report"))
	require.NoError(t, c.Set(key, []byte(`{"rows":3}`), 0))

	val, found := c.Get(key)
	require.True(t, found)
	assert.Equal(t, []byte(`{"rows":3}`), val)

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, found = c.Get(key)
	assert.False(t, found, "entry should expire")

	_, err := os.Stat(c.path(key))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, os.WriteFile(c.path("bad"), []byte("not json"), 0644))

	_, found := c.Get("bad")
	assert.False(t, found)
}

func TestDiskCache_DeleteAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)

	assert.NoError(t, c.Delete("missing"))

	require.NoError(t, c.Set("k", []byte("v"), 0))
	require.NoError(t, c.Delete("k"))
	_, found := c.Get("k")
	assert.False(t, found)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	require.NoError(t, c.Clear())
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	var events []string
	c := NewLayeredCache(time.Minute, dir, time.Hour, func(layer, event string) {
		events = append(events, layer+":"+event)
	})

	_, found := c.Get("k")
	assert.False(t, found)
	assert.Equal(t, []string{"memory:miss", "disk:miss"}, events)

	// Populate disk only, as a previous process would have
	require.NoError(t, NewDiskCache(dir, time.Hour).Set("k", []byte("v"), 0))

	events = nil
	val, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)
	assert.Equal(t, []string{"memory:miss", "disk:hit"}, events)

	events = nil
	_, found = c.Get("k")
	require.True(t, found)
	assert.Equal(t, []string{"memory:hit"}, events)
}

func TestLayeredCache_SetDeleteClear(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Hour, nil)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	val, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Delete("k"))
	_, found = c.Get("k")
	assert.False(t, found)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	require.NoError(t, c.Clear())
	_, found = c.Get("k")
	assert.False(t, found)
}
