// Package prompush pushes import metrics to a Prometheus Pushgateway.
//
// Counters map onto CounterVecs and step durations onto a SummaryVec. The
// destination table is not a metric label; it is the Pushgateway grouping key
// set with SetTable, so each table keeps its own metric group.
package prompush

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"csvimport/internal/metrics"
)

// DefaultJob is the Pushgateway job used when none is given.
const DefaultJob = "csvimport"

// counterLabels lists, per counter name, the label keys read from
// metrics.Labels. Other keys are ignored.
var counterLabels = map[string][]string{
	metrics.StepTotal:    {"step", "status"},
	metrics.RowsTotal:    {"kind"},
	metrics.BatchesTotal: nil,
}

var counterHelp = map[string]string{
	metrics.StepTotal:    "Import run steps by step and status.",
	metrics.RowsTotal:    "Rows handled by the import pass by kind.",
	metrics.BatchesTotal: "Committed import batches.",
}

// Backend collects into a private registry and pushes it on Flush.
type Backend struct {
	url   string
	job   string
	table string

	reg       *prometheus.Registry
	counters  map[string]*prometheus.CounterVec
	durations *prometheus.SummaryVec
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend builds a backend pushing to gatewayURL under job. An empty job
// becomes DefaultJob.
func NewBackend(job, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, errors.New("prompush: gateway URL is required")
	}
	if job == "" {
		job = DefaultJob
	}

	b := &Backend{
		url:      gatewayURL,
		job:      job,
		reg:      prometheus.NewRegistry(),
		counters: make(map[string]*prometheus.CounterVec, len(counterLabels)),
	}
	for name, keys := range counterLabels {
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: counterHelp[name]}, keys)
		if err := b.reg.Register(cv); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
		b.counters[name] = cv
	}

	b.durations = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:       metrics.StepDurationSeconds,
		Help:       "Import run step duration in seconds by step and status.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"step", "status"})
	if err := b.reg.Register(b.durations); err != nil {
		return nil, fmt.Errorf("prompush: register %s: %w", metrics.StepDurationSeconds, err)
	}
	return b, nil
}

// IncCounter adds delta to a known counter. Unknown names are dropped.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	cv, ok := b.counters[name]
	if !ok || delta <= 0 {
		return
	}
	cv.WithLabelValues(labelValues(counterLabels[name], labels)...).Add(delta)
}

// ObserveHistogram records a step duration. Other names are dropped.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds || b.durations == nil {
		return
	}
	b.durations.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// SetTable sets the table grouping key used by Flush. Empty means the job
// group alone.
func (b *Backend) SetTable(table string) { b.table = table }

// Flush replaces the metric group on the gateway with the registry content.
func (b *Backend) Flush() error {
	p := push.New(b.url, b.job).Gatherer(b.reg)
	if b.table != "" {
		p = p.Grouping("table", b.table)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.url, err)
	}
	return nil
}

func labelValues(keys []string, labels metrics.Labels) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = labels[k]
	}
	return out
}
