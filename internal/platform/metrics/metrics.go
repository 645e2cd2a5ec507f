package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Construct it once
// in main; a nil *Metrics is a no-op everywhere so tests can skip it.
type Metrics struct {
	ContractWrites      *prometheus.CounterVec
	ThreatsReported     prometheus.Counter
	PaymentsRecorded    *prometheus.CounterVec
	InvoicesProcessed   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ContractWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payshield_contract_writes_total",
			Help: "Total number of contract document writes",
		}, []string{"contract"}),
		ThreatsReported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payshield_threats_reported_total",
			Help: "Total number of threat fingerprints reported to the network",
		}),
		PaymentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payshield_payments_recorded_total",
			Help: "Total number of treasury transactions recorded",
		}, []string{"status"}),
		InvoicesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payshield_invoices_processed_total",
			Help: "Total number of invoices run through the processing pipeline",
		}, []string{"decision"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payshield_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler", "method"}),
	}
}

func (m *Metrics) IncContractWrites(contract string) {
	if m == nil {
		return
	}
	m.ContractWrites.WithLabelValues(contract).Inc()
}

func (m *Metrics) IncThreatsReported() {
	if m == nil {
		return
	}
	m.ThreatsReported.Inc()
}

func (m *Metrics) IncPaymentsRecorded(status string) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.WithLabelValues(status).Inc()
}

func (m *Metrics) IncInvoicesProcessed(decision string) {
	if m == nil {
		return
	}
	m.InvoicesProcessed.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveHTTPRequest(handler, method string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(handler, method).Observe(seconds)
}
