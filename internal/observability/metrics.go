package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the bot.
type Metrics struct {
	UpdatesReceived   prometheus.Counter
	MessagesSent      prometheus.Counter
	ActiveSessions    prometheus.Gauge
	Calculations      prometheus.Counter
	CalculationErrors *prometheus.CounterVec // labels: kind={unknown_crop,invalid_input}
	ReportsExported   *prometheus.CounterVec // labels: outcome={delivered,failed}
	PaymentsBlocked   prometheus.Counter

	// Kafka publishing metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter

	// Weather lookup metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
	WeatherAPIDuration prometheus.Histogram
	WeatherEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all bot metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpdatesReceived,
		m.MessagesSent,
		m.ActiveSessions,
		m.Calculations,
		m.CalculationErrors,
		m.ReportsExported,
		m.PaymentsBlocked,
		m.EventsPublished,
		m.PublishErrors,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.WeatherEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpdatesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "updates_received_total",
			Help:      "Total Telegram updates received by the long-poll loop.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "messages_sent_total",
			Help:      "Total messages sent back to users.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fertilizer_bot",
			Name:      "active_sessions",
			Help:      "Number of users with conversation state in memory.",
		}),
		Calculations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "calculations_total",
			Help:      "Total completed dosage calculations.",
		}),
		CalculationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "calculation_errors_total",
			Help:      "Dosage calculation failures by kind.",
		}, []string{"kind"}),
		ReportsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "reports_exported_total",
			Help:      "Report document exports by outcome.",
		}, []string{"outcome"}),
		PaymentsBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "payments_blocked_total",
			Help:      "Calculations blocked by the free-usage limit.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "events_published_total",
			Help:      "Recommendation events written to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publishes.",
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "weather_requests_total",
			Help:      "Weather API requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fertilizer_bot",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fertilizer_bot",
			Name:      "weather_api_duration_seconds",
			Help:      "Weather API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fertilizer_bot",
			Name:      "weather_enabled",
			Help:      "1 when the weather lookup is enabled, 0 otherwise.",
		}),
	}
}
