package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spboyer/lineagebench/internal/models"
)

// Recorder exports run metrics through a private Prometheus registry.
// Its methods match the dispatcher's observer hooks.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	jobsTotal       *prometheus.CounterVec
	repairsTotal    *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineagebench_requests_total",
			Help: "Requests sent to the service by model, kind and result",
		}, []string{"model", "kind", "result"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineagebench_request_duration_seconds",
			Help:    "Duration of successful requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s to ~2min
		}, []string{"model"}),
		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineagebench_jobs_total",
			Help: "Finished jobs by model and terminal state",
		}, []string{"model", "state"}),
		repairsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lineagebench_repairs_total",
			Help: "Repair attempts by model and result",
		}, []string{"model", "result"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RequestFinished counts one request. repair marks the corrective request.
func (r *Recorder) RequestFinished(model string, repair bool, d time.Duration, err error) {
	kind := "initial"
	if repair {
		kind = "repair"
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.requestsTotal.WithLabelValues(model, kind, result).Inc()
	if err == nil {
		r.requestDuration.WithLabelValues(model).Observe(d.Seconds())
	}
}

// JobFinished counts a job reaching a terminal state.
func (r *Recorder) JobFinished(job models.Job, state models.JobState, repairAttempted bool) {
	r.jobsTotal.WithLabelValues(job.Model, string(state)).Inc()
	if !repairAttempted {
		return
	}
	result := "repaired"
	if state != models.JobWritten {
		result = "exhausted"
	}
	r.repairsTotal.WithLabelValues(job.Model, result).Inc()
}

// WriteTextfile writes the current metrics in the text exposition format,
// as consumed by the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
