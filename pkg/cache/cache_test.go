package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSetExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewWithClock(time.Minute, func() time.Time { return now })

	c.Set("a", 1)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)

	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestSweepRemovesExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewWithClock(time.Minute, func() time.Time { return now })

	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Hour)

	now = now.Add(10 * time.Minute)
	c.Sweep()

	assert.Equal(t, 1, c.Size())
	_, ok := c.Get("b")
	assert.True(t, ok)
}

func TestDeleteByPrefix(t *testing.T) {
	c := New(time.Minute)

	c.Set("cohort:plumbing", 1)
	c.Set("cohort:roofing", 2)
	c.Set("listing:abc", 3)

	c.DeleteByPrefix("cohort:")

	assert.Equal(t, 1, c.Size())
	_, ok := c.Get("listing:abc")
	assert.True(t, ok)
}

func TestGetOrSetComputesOnce(t *testing.T) {
	c := New(time.Minute)

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return "v", nil
	}

	v, err := c.GetOrSet("k", compute)
	assert.NoError(t, err)
	assert.Equal(t, "v", v)

	v, err = c.GetOrSet("k", compute)
	assert.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, calls)
}
