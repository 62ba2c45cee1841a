// Package prom records observability hook events as Prometheus metrics.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/ioschema/pkg/observability"
)

const metricPrefix = "ioschema_"

const (
	resultSuccess = "success"
	resultError   = "error"
)

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// Hooks implements every observability hook interface.
type Hooks struct {
	stageTotal      *prometheus.CounterVec
	stageLatency    *prometheus.HistogramVec
	generations     *prometheus.CounterVec
	generationTime  prometheus.Histogram
	generationWarns prometheus.Counter
	pointsPlaced    prometheus.Counter

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Hooks, error) {
	h := &Hooks{
		stageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stage_total",
				Help: "Pipeline stage executions by stage and result",
			},
			[]string{"stage", "result"},
		),
		stageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "stage_latency_seconds",
				Help:    "Pipeline stage latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "generations_total",
				Help: "Diagram generation requests by result",
			},
			[]string{"result"},
		),
		generationTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "generation_latency_seconds",
				Help:    "End-to-end generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		generationWarns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "generation_warnings_total",
				Help: "Warnings attached to generated diagrams",
			},
		),
		pointsPlaced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "points_total",
				Help: "I/O points processed by successful generations",
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_events_total",
				Help: "Catalog cache events by key type and event",
			},
			[]string{"key_type", "event"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_written_bytes_total",
				Help: "Bytes written to the catalog cache by key type",
			},
			[]string{"key_type"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "HTTP handler latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	for _, c := range []prometheus.Collector{
		h.stageTotal, h.stageLatency, h.generations, h.generationTime,
		h.generationWarns, h.pointsPlaced, h.cacheEvents, h.cacheBytes,
		h.httpRequests, h.httpLatency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Install registers h as the global pipeline, cache and HTTP hooks.
func (h *Hooks) Install() {
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *Hooks) OnStageStart(context.Context, string) {}

func (h *Hooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	h.stageTotal.WithLabelValues(stage, result(err)).Inc()
	h.stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

func (h *Hooks) OnGenerationComplete(_ context.Context, _, points, warnings int, d time.Duration, err error) {
	h.generations.WithLabelValues(result(err)).Inc()
	h.generationTime.Observe(d.Seconds())
	if err == nil {
		h.generationWarns.Add(float64(warnings))
		h.pointsPlaced.Add(float64(points))
	}
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	h.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
