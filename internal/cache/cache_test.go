package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestMemoryCacheSetGet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemory(clock)

	c.Set("categories", []string{"fruit", "dairy"}, 5*time.Minute)

	got, ok := c.Get("categories")
	assert.True(t, ok)
	assert.Equal(t, []string{"fruit", "dairy"}, got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemory(clock)

	c.Set("k", "v", time.Minute)

	clock.Advance(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry should survive until the TTL elapses")

	clock.Advance(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire after the TTL")
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewMemory(&fakeClock{now: time.Now()})

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMemoryCacheMissingKey(t *testing.T) {
	c := NewMemory(nil)
	_, ok := c.Get("absent")
	assert.False(t, ok)
}
