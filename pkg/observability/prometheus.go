package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "layoutview"

// Prometheus implements every hook interface on Prometheus collectors.
// All collectors are registered on the registerer given to NewPrometheus.
type Prometheus struct {
	loadDuration        *prometheus.HistogramVec
	materializeDuration *prometheus.HistogramVec
	unresolved          *prometheus.CounterVec
	exportBytes         *prometheus.HistogramVec
	exportDuration      *prometheus.HistogramVec
	inflightLoads       prometheus.Gauge

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploadFiles     prometheus.Histogram
	uploadBytes     prometheus.Histogram
	serverErrors    *prometheus.CounterVec
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ ServerHooks   = (*Prometheus)(nil)
)

// NewPrometheus creates the collectors and registers them on reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	durations := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	return &Prometheus{
		loadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "load_duration_seconds",
			Help:      "Time to read LEF and DEF files into a layout database",
			Buckets:   durations,
		}, []string{"status"}),
		materializeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "materialize_duration_seconds",
			Help:      "Time to flatten a layout database into a snapshot",
			Buckets:   durations,
		}, []string{"status"}),
		unresolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "unresolved_references_total",
			Help:      "References the snapshot builder could not resolve",
		}, []string{"design"}),
		exportBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "export_bytes",
			Help:      "Size of exported snapshot JSON",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}, []string{"compressed"}),
		exportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "export_duration_seconds",
			Help:      "Time to encode a snapshot as JSON",
			Buckets:   durations,
		}, []string{"status"}),
		inflightLoads: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "loads_in_flight",
			Help:      "Design loads currently running",
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache lookups and writes by result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   durations,
		}, []string{"method", "route"}),
		uploadFiles: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "upload_files",
			Help:      "Files per design upload",
			Buckets:   []float64{2, 3, 4, 6, 8, 16, 32},
		}),
		uploadBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "upload_bytes",
			Help:      "Bytes per design upload",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 10),
		}),
		serverErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Requests that failed with a server error",
		}, []string{"method", "route"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// =============================================================================
// PipelineHooks
// =============================================================================

func (p *Prometheus) OnLoadStart(context.Context, int) {
	p.inflightLoads.Inc()
}

func (p *Prometheus) OnLoadComplete(_ context.Context, _ string, d time.Duration, err error) {
	p.inflightLoads.Dec()
	p.loadDuration.WithLabelValues(status(err)).Observe(d.Seconds())
}

func (p *Prometheus) OnMaterializeComplete(_ context.Context, design string, unresolved int, d time.Duration, err error) {
	p.materializeDuration.WithLabelValues(status(err)).Observe(d.Seconds())
	if unresolved > 0 {
		p.unresolved.WithLabelValues(design).Add(float64(unresolved))
	}
}

func (p *Prometheus) OnExportComplete(_ context.Context, bytes int, compressed bool, d time.Duration, err error) {
	p.exportDuration.WithLabelValues(status(err)).Observe(d.Seconds())
	if err == nil {
		p.exportBytes.WithLabelValues(strconv.FormatBool(compressed)).Observe(float64(bytes))
	}
}

// =============================================================================
// CacheHooks
// =============================================================================

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// ServerHooks
// =============================================================================

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (p *Prometheus) OnUpload(_ context.Context, files int, bytes int64) {
	p.uploadFiles.Observe(float64(files))
	p.uploadBytes.Observe(float64(bytes))
}

func (p *Prometheus) OnError(_ context.Context, method, route string, _ error) {
	p.serverErrors.WithLabelValues(method, route).Inc()
}
