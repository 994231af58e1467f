package metrics

import (
	"context"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/observability"
)

const namespace = "modmirror"

// Recorder records hook events into a Prometheus registry.
type Recorder struct {
	reg *prom.Registry

	runs          prom.Counter
	runDuration   prom.Histogram
	lastRun       prom.Gauge
	repoResults   *prom.CounterVec
	repoDuration  *prom.HistogramVec
	repoErrors    *prom.CounterVec
	inFlight      prom.Gauge
	httpRequests  *prom.CounterVec
	httpDuration  *prom.HistogramVec
	httpErrors    *prom.CounterVec
	cacheEvents   *prom.CounterVec
	cacheSetBytes prom.Counter
}

var (
	_ observability.SyncHooks  = (*Recorder)(nil)
	_ observability.HTTPHooks  = (*Recorder)(nil)
	_ observability.CacheHooks = (*Recorder)(nil)
)

// NewRecorder creates the metrics and registers them with reg. A nil reg
// uses a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		runs: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs started",
		}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_run_duration_seconds",
			Help:      "Duration of whole sync runs",
			Buckets:   prom.ExponentialBuckets(1, 2, 12),
		}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_run_timestamp_seconds",
			Help:      "Unix time the last sync run finished",
		}),
		repoResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "repo_sync_total",
			Help:      "Repository syncs by outcome",
		}, []string{"repo", "outcome"}),
		repoDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "repo_sync_duration_seconds",
			Help:      "Duration of individual repository syncs",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		repoErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "repo_sync_errors_total",
			Help:      "Repository sync failures by error code",
		}, []string{"code"}),
		inFlight: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "repo_sync_in_flight",
			Help:      "Repositories currently syncing",
		}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by host and status code",
		}, []string{"host", "status"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by host",
			Buckets:   prom.DefBuckets,
		}, []string{"host"}),
		httpErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP transport failures by host",
		}, []string{"host"}),
		cacheEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Page cache hits, misses and sets by entry type",
		}, []string{"type", "event"}),
		cacheSetBytes: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_set_bytes_total",
			Help:      "Bytes written to the page cache",
		}),
		reg: reg,
	}
	reg.MustRegister(r.runs, r.runDuration, r.lastRun, r.repoResults, r.repoDuration, r.repoErrors,
		r.inFlight, r.httpRequests, r.httpDuration, r.httpErrors, r.cacheEvents, r.cacheSetBytes)
	return r
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prom.Registry { return r.reg }

// Register installs r as the sync, HTTP and cache hooks.
func (r *Recorder) Register() {
	observability.SetSyncHooks(r)
	observability.SetHTTPHooks(r)
	observability.SetCacheHooks(r)
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, r.reg); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "write metrics to %s", path)
	}
	return nil
}

func (r *Recorder) OnRunStart(context.Context, string, int) {
	r.runs.Inc()
}

func (r *Recorder) OnRunComplete(_ context.Context, _ string, d time.Duration) {
	r.runDuration.Observe(d.Seconds())
	r.lastRun.SetToCurrentTime()
}

func (r *Recorder) OnRepoStart(context.Context, string) {
	r.inFlight.Inc()
}

func (r *Recorder) OnRepoComplete(_ context.Context, repo, outcome string, d time.Duration, err error) {
	r.inFlight.Dec()
	r.repoResults.WithLabelValues(repo, outcome).Inc()
	r.repoDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if err != nil {
		code := string(errors.GetCode(err))
		if code == "" {
			code = "UNKNOWN"
		}
		r.repoErrors.WithLabelValues(code).Inc()
	}
}

func (r *Recorder) OnRequest(context.Context, string, string, string) {}

func (r *Recorder) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (r *Recorder) OnError(_ context.Context, _, host, _ string, _ error) {
	r.httpErrors.WithLabelValues(host).Inc()
}

func (r *Recorder) OnCacheHit(_ context.Context, keyType string) {
	r.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (r *Recorder) OnCacheMiss(_ context.Context, keyType string) {
	r.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (r *Recorder) OnCacheSet(_ context.Context, keyType string, size int) {
	r.cacheEvents.WithLabelValues(keyType, "set").Inc()
	r.cacheSetBytes.Add(float64(size))
}
