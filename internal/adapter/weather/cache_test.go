package weather

import (
	"context"
	"testing"

	"github.com/agrodose/fertilizer-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingProvider struct {
	calls  int
	report domain.WeatherReport
}

func (m *countingProvider) Current(_ context.Context, _ string) (domain.WeatherReport, error) {
	m.calls++
	return m.report, nil
}

// --- CachedProvider tests ---

func TestCachedProvider_CacheHit(t *testing.T) {
	inner := &countingProvider{
		report: domain.WeatherReport{Place: "Київ", Description: "ясно", TempC: 21},
	}
	cached := NewCachedProvider(inner, 10, testMetrics())

	r1, err := cached.Current(context.Background(), "Київ")
	require.NoError(t, err)
	assert.Equal(t, "Київ", r1.Place)

	r2, err := cached.Current(context.Background(), "Київ")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedProvider_KeyIsCaseInsensitive(t *testing.T) {
	inner := &countingProvider{
		report: domain.WeatherReport{Place: "Львів"},
	}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.Current(context.Background(), "ЛЬВІВ")
	_, _ = cached.Current(context.Background(), "львів ")

	assert.Equal(t, 1, inner.calls)
}

func TestCachedProvider_DifferentPlacesMiss(t *testing.T) {
	inner := &countingProvider{
		report: domain.WeatherReport{Place: "Місто"},
	}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.Current(context.Background(), "Київ")
	_, _ = cached.Current(context.Background(), "Одеса")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_UnresolvedPlaceNotCached(t *testing.T) {
	inner := &countingProvider{report: domain.WeatherReport{}}
	cached := NewCachedProvider(inner, 10, testMetrics())

	_, _ = cached.Current(context.Background(), "Ніде")
	_, _ = cached.Current(context.Background(), "Ніде")

	assert.Equal(t, 2, inner.calls, "empty results should be retried")
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.WeatherReport{Place: "A"})
	c.put("b", domain.WeatherReport{Place: "B"})

	report, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", report.Place)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.WeatherReport{Place: "A"})
	c.put("b", domain.WeatherReport{Place: "B"})
	c.put("c", domain.WeatherReport{Place: "C"}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	report, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", report.Place)

	report, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", report.Place)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.WeatherReport{Place: "A"})
	c.put("b", domain.WeatherReport{Place: "B"})

	// Access "a" to promote it
	c.get("a")

	c.put("c", domain.WeatherReport{Place: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.WeatherReport{Place: "A1"})
	c.put("a", domain.WeatherReport{Place: "A2"})

	report, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", report.Place)
}
