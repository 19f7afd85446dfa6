package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shubh-37/idea-processor/internal/agents"
)

// Metrics holds the HTTP and AI collectors on their own registry. It is
// also the agents.Observer of the orchestrator.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	aiCalls    *prometheus.CounterVec
	aiDuration *prometheus.HistogramVec

	wsClients prometheus.Gauge
}

var _ agents.Observer = (*Metrics)(nil)

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		}),
		aiCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_calls_total",
				Help: "Model attempts by generation kind, model and outcome",
			},
			[]string{"kind", "model", "outcome"},
		),
		aiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_call_duration_seconds",
				Help:    "Model attempt latencies in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
			},
			[]string{"kind"},
		),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Open live state websockets",
		}),
	}
}

// Middleware records request counts and latencies by route template
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not written the response yet
			status = toHTTPError(err, false).Status
		}
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}

		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(status),
		}
		m.httpRequests.With(labels).Inc()
		m.httpDuration.With(labels).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) ObserveAICall(kind agents.Kind, model string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.aiCalls.WithLabelValues(string(kind), model, outcome).Inc()
	m.aiDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
