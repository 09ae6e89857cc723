package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "transform_api"

// Prometheus exposes request and transform measurements for scraping
type Prometheus struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	transforms    *prometheus.CounterVec
	transformTime *prometheus.HistogramVec
	tokens        *prometheus.CounterVec
}

// NewPrometheus creates collectors on a private registry
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "transforms_total",
			Help:      "Transform requests by profile, feature, pattern status and result.",
		}, []string{"profile", "feature", "pattern_status", "result"}),
		transformTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Name:      "transform_duration_seconds",
			Help:      "End-to-end transform latency by profile and provider.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"profile", "provider"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens reported by the provider.",
		}, []string{"provider", "model", "direction"}),
	}

	p.registry.MustRegister(
		p.httpRequests,
		p.httpDuration,
		p.transforms,
		p.transformTime,
		p.tokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Handler serves the exposition format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) RecordAPIRequest(_ context.Context, endpoint string, statusCode int, duration time.Duration) {
	p.httpRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	p.httpDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (p *Prometheus) RecordTransform(_ context.Context, o Outcome) {
	p.transforms.WithLabelValues(o.Profile, o.Feature, o.PatternStatus, o.Result()).Inc()
	p.transformTime.WithLabelValues(o.Profile, o.Provider).Observe(o.Duration.Seconds())

	if o.InputTokens > 0 {
		p.tokens.WithLabelValues(o.Provider, o.Model, "input").Add(float64(o.InputTokens))
	}
	if o.OutputTokens > 0 {
		p.tokens.WithLabelValues(o.Provider, o.Model, "output").Add(float64(o.OutputTokens))
	}
}
