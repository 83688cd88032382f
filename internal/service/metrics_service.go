package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/academy-ops-api/internal/models"
)

const metricsNamespace = "academy_ops"

// MetricsSnapshot is the JSON view served on /ops/metrics.
type MetricsSnapshot struct {
	Bookings      map[string]uint64 `json:"bookings"`
	Finalize      map[string]uint64 `json:"finalize"`
	Effects       map[string]uint64 `json:"effects"`
	CacheHits     uint64            `json:"cacheHits"`
	CacheMisses   uint64            `json:"cacheMisses"`
	CacheHitRatio float64           `json:"cacheHitRatio"`
	RequestsTotal uint64            `json:"requestsTotal"`
	AvgRequestMs  float64           `json:"averageRequestDurationMs"`
	ServerErrors  uint64            `json:"serverErrors"`
	Goroutines    int               `json:"goroutines"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	GeneratedAt   time.Time         `json:"generatedAt"`
}

// MetricsService owns the Prometheus registry and mirrors the admissions counters in memory
// so the ops endpoint can report them without scraping.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler
	started  time.Time

	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    *prometheus.HistogramVec
	bookings        *prometheus.CounterVec
	effects         *prometheus.CounterVec
	finalize        *prometheus.CounterVec

	mu             sync.Mutex
	bookingCounts  map[string]uint64
	finalizeCounts map[string]uint64
	effectCounts   map[string]uint64
	cacheHits      uint64
	cacheMisses    uint64
	requests       uint64
	requestNanos   uint64
	serverErrors   uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry:       prometheus.NewRegistry(),
		started:        time.Now(),
		bookingCounts:  make(map[string]uint64),
		finalizeCounts: make(map[string]uint64),
		effectCounts:   make(map[string]uint64),
	}

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "route", "status"})

	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "slot_cache",
		Name:      "lookups_total",
		Help:      "Slot listing cache lookups by result.",
	}, []string{"result"})

	m.cacheLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "slot_cache",
		Name:      "operation_seconds",
		Help:      "Slot listing cache latency by operation.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05},
	}, []string{"op"})

	m.bookings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "slot_bookings_total",
		Help:      "Slot booking and release attempts by outcome.",
	}, []string{"outcome"})

	m.effects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "workflow_effects_total",
		Help:      "Checklist side effects by kind and result.",
	}, []string{"effect", "result"})

	m.finalize = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "enrollment_finalize_total",
		Help:      "Enrollment finalize invocations by result.",
	}, []string{"result"})

	m.registry.MustRegister(
		m.requestDuration, m.cacheLookups, m.cacheLatency, m.bookings, m.effects, m.finalize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request. route is the matched route template.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
	m.mu.Lock()
	m.requests++
	m.requestNanos += uint64(duration.Nanoseconds())
	if status >= http.StatusInternalServerError {
		m.serverErrors++
	}
	m.mu.Unlock()
}

// RecordCacheOperation records a slot cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
	m.mu.Lock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
	m.mu.Unlock()
}

// ObserveCacheWrite tracks slot cache fills.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// RecordBooking counts a booking attempt by outcome (booked, unchanged, superseded, released, full, closed, error).
func (m *MetricsService) RecordBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
	m.mu.Lock()
	m.bookingCounts[outcome]++
	m.mu.Unlock()
}

// RecordTriggerDispatch counts one checklist side effect by kind and result.
func (m *MetricsService) RecordTriggerDispatch(effect models.EffectKind, result string) {
	if m == nil {
		return
	}
	m.effects.WithLabelValues(string(effect), result).Inc()
	m.mu.Lock()
	m.effectCounts[string(effect)+"."+result]++
	m.mu.Unlock()
}

// RecordFinalize counts finalize invocations (created, existing, error).
func (m *MetricsService) RecordFinalize(result string) {
	if m == nil {
		return
	}
	m.finalize.WithLabelValues(result).Inc()
	m.mu.Lock()
	m.finalizeCounts[result]++
	m.mu.Unlock()
}

// Snapshot copies the in-memory counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		Bookings:      copyCounts(m.bookingCounts),
		Finalize:      copyCounts(m.finalizeCounts),
		Effects:       copyCounts(m.effectCounts),
		CacheHits:     m.cacheHits,
		CacheMisses:   m.cacheMisses,
		RequestsTotal: m.requests,
		ServerErrors:  m.serverErrors,
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		GeneratedAt:   time.Now().UTC(),
	}
	if lookups := m.cacheHits + m.cacheMisses; lookups > 0 {
		snap.CacheHitRatio = float64(m.cacheHits) / float64(lookups)
	}
	if m.requests > 0 {
		snap.AvgRequestMs = float64(m.requestNanos) / float64(m.requests) / float64(time.Millisecond)
	}
	return snap
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
