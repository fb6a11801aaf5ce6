package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hargaemas/internal/source"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder records aggregation metrics using Prometheus.
type Recorder struct {
	registry    *prometheus.Registry
	runsTotal   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

// New creates a recorder backed by its own registry so that several
// recorders can coexist in one process.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hargaemas_source_runs_total",
				Help: "Total number of source runs by outcome",
			},
			[]string{"source", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hargaemas_source_duration_seconds",
				Help:    "Duration of a source fetch and extraction in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		lastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hargaemas_source_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run per source",
			},
			[]string{"source"},
		),
	}
}

// ObserveSource records the outcome and duration of one source run.
func (r *Recorder) ObserveSource(id source.ID, ok bool, d time.Duration) {
	outcome := OutcomeFailure
	if ok {
		outcome = OutcomeSuccess
		r.lastSuccess.WithLabelValues(string(id)).SetToCurrentTime()
	}
	r.runsTotal.WithLabelValues(string(id), outcome).Inc()
	r.duration.WithLabelValues(string(id)).Observe(d.Seconds())
}

// Handler exposes the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
