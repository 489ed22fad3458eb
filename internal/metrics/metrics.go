// Package metrics records import run metrics through a process-wide Backend.
//
// The default backend drops everything, so instrumented code never checks
// whether metrics are configured. Concrete backends live in prompush and
// datadog; setup picks one at start-up.
package metrics

import (
	"io"
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	StepTotal           = "csvimport_step_total"
	StepDurationSeconds = "csvimport_step_duration_seconds"
	RowsTotal           = "csvimport_rows_total"
	BatchesTotal        = "csvimport_batches_total"
)

// Row kinds recorded under RowsTotal.
const (
	RowImported = "imported"
	RowFailed   = "failed"
)

// Step statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend receives counter increments and duration samples.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush sends buffered data, for backends that buffer or push.
	Flush() error
}

type discard struct{}

func (discard) IncCounter(string, float64, Labels)       {}
func (discard) ObserveHistogram(string, float64, Labels) {}
func (discard) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = discard{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs b as the process backend. nil is ignored.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush flushes the installed backend.
func Flush() error {
	return current().Flush()
}

// Close flushes the installed backend, closes it if it holds resources and
// puts the discarding backend back.
func Close() error {
	mu.Lock()
	b := backend
	backend = discard{}
	mu.Unlock()

	err := b.Flush()
	if c, ok := b.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// RecordStep counts one run step for table and records its duration.
func RecordStep(table, step string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	lbls := Labels{"table": table, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow adds delta rows of kind (RowImported, RowFailed) for table.
func RecordRow(table, kind string, delta int64) {
	if delta > 0 {
		current().IncCounter(RowsTotal, float64(delta), Labels{"table": table, "kind": kind})
	}
}

// RecordBatches adds delta committed batches for table.
func RecordBatches(table string, delta int64) {
	if delta > 0 {
		current().IncCounter(BatchesTotal, float64(delta), Labels{"table": table})
	}
}
