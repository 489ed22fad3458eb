package setup

import (
	"testing"

	"csvimport/internal/metrics"
)

func resetBackend(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { _ = metrics.Close() })
}

// Install swaps the global metrics backend, so these tests do not run in
// parallel.

func TestInstall(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{name: "default is none", opts: Options{}, want: None},
		{name: "explicit none", opts: Options{Backend: "none"}, want: None},
		{name: "pushgateway", opts: Options{Backend: "pushgateway", PushgatewayURL: "http://127.0.0.1:1", Table: "orders"}, want: Pushgateway},
		{name: "datadog", opts: Options{Backend: "Datadog", StatsdAddr: "127.0.0.1:8125"}, want: Datadog},
		{name: "unknown", opts: Options{Backend: "graphite"}, want: None, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("METRICS_BACKEND", "")
			resetBackend(t)
			got, err := Install(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Install() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Install() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstallReadsEnvironment(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "pushgateway")
	t.Setenv("PUSHGATEWAY_URL", "http://127.0.0.1:1")
	resetBackend(t)

	got, err := Install(Options{})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if got != Pushgateway {
		t.Fatalf("Install() = %q, want %q", got, Pushgateway)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	if got := firstNonEmpty("", "  ", "b", "c"); got != "b" {
		t.Fatalf("firstNonEmpty() = %q, want b", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Fatalf("firstNonEmpty() = %q, want empty", got)
	}
}
