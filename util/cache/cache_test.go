package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New(15 * time.Second)
	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("k", 42)
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestExpiry(t *testing.T) {
	c := New(15 * time.Second)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	c.now = func() time.Time { return base.Add(16 * time.Second) }
	_, ok = c.Get("k")
	require.False(t, ok)

	// Expired entry is gone, not just hidden.
	c.mu.RLock()
	_, exists := c.entries["k"]
	c.mu.RUnlock()
	require.False(t, exists)
}
