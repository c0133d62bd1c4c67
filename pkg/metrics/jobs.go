package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records scheduled job outcomes for the sync worker.
type JobMetrics struct {
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewJobMetrics registers the job metrics on the provided registerer.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coilprint_job_success_total",
		Help: "Scheduled jobs that completed without error.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coilprint_job_failure_total",
		Help: "Scheduled jobs that returned an error.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coilprint_job_duration_seconds",
		Help:    "Scheduled job run duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	reg.MustRegister(success, failure, duration)
	return &JobMetrics{success: success, failure: failure, duration: duration}
}

func (m *JobMetrics) IncSuccess(job string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(job).Inc()
}

func (m *JobMetrics) IncFailure(job string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(job).Inc()
}

func (m *JobMetrics) ObserveDuration(job string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(job).Observe(duration.Seconds())
}
