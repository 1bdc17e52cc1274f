//go:build openweather

package weather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/agrodose/fertilizer-bot/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real OpenWeather API and require a valid WEATHER_API_KEY
// env var. Run with: go test -tags=openweather ./internal/adapter/weather/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("WEATHER_API_KEY")
	if key == "" {
		t.Fatal("WEATHER_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:     key,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.openweathermap.org/data/2.5/weather",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_Current(t *testing.T) {
	c := smokeClient(t)

	report, err := c.Current(context.Background(), "Kyiv")
	require.NoError(t, err)

	assert.NotEmpty(t, report.Place)
	assert.NotEmpty(t, report.Description)
	assert.Greater(t, report.Humidity, 0)
}

func TestSmoke_CachedProvider(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedProvider(c, 10, observability.NewMetricsForTesting())

	// First call: cache miss, real API call.
	r1, err := cached.Current(context.Background(), "Lviv")
	require.NoError(t, err)
	assert.NotEmpty(t, r1.Place)

	// Second call: cache hit, no API call.
	r2, err := cached.Current(context.Background(), "Lviv")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
