package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/agrodose/fertilizer-bot/internal/domain"
	"github.com/agrodose/fertilizer-bot/internal/observability"
)

// Client implements domain.WeatherProvider using the OpenWeather current
// weather API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OpenWeather client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		logger:  logger,
		metrics: metrics,
	}
}

// Current fetches the current weather for a place name.
func (c *Client) Current(ctx context.Context, place string) (domain.WeatherReport, error) {
	params := url.Values{
		"q":     {place},
		"appid": {c.apiKey},
		"units": {"metric"},
		"lang":  {"ua"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReport{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReport{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	var owResp response
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReport{}, fmt.Errorf("decode response: %w", err)
	}

	report := domain.WeatherReport{
		Place:     owResp.Name,
		TempC:     owResp.Main.Temp,
		Humidity:  owResp.Main.Humidity,
		WindSpeed: owResp.Wind.Speed,
	}
	if len(owResp.Weather) > 0 {
		report.Description = owResp.Weather[0].Description
	}
	if report.Place == "" {
		c.metrics.WeatherRequests.WithLabelValues("empty").Inc()
		return domain.WeatherReport{}, nil
	}

	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return report, nil
}

// OpenWeather API response types.

type response struct {
	Name    string      `json:"name"`
	Weather []condition `json:"weather"`
	Main    mainBlock   `json:"main"`
	Wind    windBlock   `json:"wind"`
}

type condition struct {
	Description string `json:"description"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity int     `json:"humidity"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
}
