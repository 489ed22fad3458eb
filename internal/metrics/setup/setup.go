// Package setup chooses and installs the process metrics backend from
// command line flags and the environment.
package setup

import (
	"fmt"
	"os"
	"strings"

	"csvimport/internal/metrics"
	"csvimport/internal/metrics/datadog"
	"csvimport/internal/metrics/prompush"
)

// Backend names accepted by Install.
const (
	Pushgateway = "pushgateway"
	Datadog     = "datadog"
	None        = "none"
)

// Defaults used when neither a flag nor the environment names a target.
const (
	DefaultPushgatewayURL = "http://localhost:9091"
	DefaultStatsdAddr     = "127.0.0.1:8125"
)

// Options selects a backend. Empty fields fall back to the environment
// (METRICS_BACKEND, PUSHGATEWAY_URL, DD_DOGSTATSD_ADDR) and then to the
// defaults above.
type Options struct {
	Backend        string
	PushgatewayURL string
	StatsdAddr     string
	// Job is the Pushgateway job name.
	Job string
	// Table groups pushed metrics by destination table.
	Table string
	// Tags are global Datadog tags, "key:value".
	Tags []string
}

// Install builds the backend named by o and makes it the global metrics
// backend. The returned name is the backend actually installed; "none"
// leaves the nop backend in place.
func Install(o Options) (string, error) {
	name := strings.ToLower(strings.TrimSpace(firstNonEmpty(o.Backend, os.Getenv("METRICS_BACKEND"))))
	switch name {
	case Pushgateway:
		url := firstNonEmpty(o.PushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), DefaultPushgatewayURL)
		b, err := prompush.NewBackend(o.Job, url)
		if err != nil {
			return None, fmt.Errorf("metrics: init pushgateway backend: %w", err)
		}
		b.SetTable(o.Table)
		metrics.SetBackend(b)
		return Pushgateway, nil

	case Datadog:
		addr := firstNonEmpty(o.StatsdAddr, os.Getenv("DD_DOGSTATSD_ADDR"), DefaultStatsdAddr)
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "csvimport.", GlobalTags: o.Tags})
		if err != nil {
			return None, fmt.Errorf("metrics: init datadog backend: %w", err)
		}
		metrics.SetBackend(b)
		return Datadog, nil

	case "", None:
		return None, nil

	default:
		return None, fmt.Errorf("metrics: unknown backend %q", name)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
