package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records per-machine outcomes of the print pipeline.
type PipelineMetrics struct {
	received      *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	printSuccess  *prometheus.CounterVec
	printFailure  *prometheus.CounterVec
	printDuration *prometheus.HistogramVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coilprint_events_received_total",
		Help: "Inbound coil events received from the broker.",
	}, []string{"machine"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coilprint_events_dropped_total",
		Help: "Events dropped because no active assignment was found.",
	}, []string{"machine"})
	printSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coilprint_labels_printed_total",
		Help: "Labels successfully delivered to the printer.",
	}, []string{"machine"})
	printFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coilprint_labels_failed_total",
		Help: "Label events audited with FAILED status.",
	}, []string{"machine"})
	printDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coilprint_print_duration_seconds",
		Help:    "Duration of print transport calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"machine"})
	reg.MustRegister(received, dropped, printSuccess, printFailure, printDuration)
	return &PipelineMetrics{
		received:      received,
		dropped:       dropped,
		printSuccess:  printSuccess,
		printFailure:  printFailure,
		printDuration: printDuration,
	}
}

// IncReceived counts one inbound event for the machine.
func (m *PipelineMetrics) IncReceived(machineID int) {
	if m == nil || m.received == nil {
		return
	}
	m.received.WithLabelValues(machineLabel(machineID)).Inc()
}

// IncDropped counts one inactive-assignment drop for the machine.
func (m *PipelineMetrics) IncDropped(machineID int) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(machineLabel(machineID)).Inc()
}

// IncPrinted counts one successful print for the machine.
func (m *PipelineMetrics) IncPrinted(machineID int) {
	if m == nil || m.printSuccess == nil {
		return
	}
	m.printSuccess.WithLabelValues(machineLabel(machineID)).Inc()
}

// IncFailed counts one FAILED audit row for the machine.
func (m *PipelineMetrics) IncFailed(machineID int) {
	if m == nil || m.printFailure == nil {
		return
	}
	m.printFailure.WithLabelValues(machineLabel(machineID)).Inc()
}

// ObservePrintDuration records the duration of one transport call.
func (m *PipelineMetrics) ObservePrintDuration(machineID int, duration time.Duration) {
	if m == nil || m.printDuration == nil {
		return
	}
	m.printDuration.WithLabelValues(machineLabel(machineID)).Observe(duration.Seconds())
}

func machineLabel(machineID int) string {
	return strconv.Itoa(machineID)
}
