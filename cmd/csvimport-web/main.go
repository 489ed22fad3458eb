// Command csvimport-web serves CSV scans and imports over HTTP.
//
// Usage:
//
//	go run ./cmd/csvimport-web -addr :8080 -db imports.db -config configs/import.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"csvimport/internal/config"
	"csvimport/internal/logger"
	"csvimport/internal/metrics"
	"csvimport/internal/metrics/setup"
	"csvimport/internal/web"
)

func main() {
	var (
		addr           = flag.String("addr", ":8080", "listen address")
		dbPath         = flag.String("db", "csvimport.db", "destination SQLite database path")
		cfgPath        = flag.String("config", "", "import config path (.json, .yaml); empty uses defaults")
		spoolDir       = flag.String("spool-dir", "", "directory for upload spool files (default: OS temp dir)")
		maxUpload      = flag.Int64("max-upload", web.DefaultMaxUploadSize, "maximum upload size in bytes")
		timeout        = flag.Duration("request-timeout", 10*time.Minute, "per-request timeout, import included")
		metricsBackend = flag.String("metrics-backend", "", "metrics backend: pushgateway, datadog, none")
		pushGatewayURL = flag.String("pushgateway-url", "", "Pushgateway base URL")
		statsdAddr     = flag.String("statsd-addr", "", "DogStatsD address")
		flushEvery     = flag.Duration("metrics-flush", 30*time.Second, "metrics flush interval")
		logFormat      = flag.String("log-format", "json", "log format: json, console")
		verbose        = flag.Bool("v", false, "enable debug logs")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	issues := config.ValidateConfig(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if err := issues.Err(); err != nil {
		fatalf("configuration is invalid: %v", err)
	}

	level := cfg.Import.LogLevel
	if *verbose {
		level = zerolog.LevelDebugValue
	}
	log, err := logger.New(logger.Config{Level: level, Format: *logFormat})
	if err != nil {
		fatalf("logger: %v", err)
	}

	backend, err := setup.Install(setup.Options{
		Backend:        *metricsBackend,
		PushgatewayURL: *pushGatewayURL,
		StatsdAddr:     *statsdAddr,
		Job:            "csvimport_web",
	})
	if err != nil {
		log.Warn().Err(err).Msg("metrics disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(web.Config{
		Addr:           *addr,
		DBPath:         *dbPath,
		SpoolDir:       *spoolDir,
		MaxUploadSize:  *maxUpload,
		RequestTimeout: *timeout,
		Import:         cfg,
	}, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(ctx) })
	if backend != setup.None {
		g.Go(func() error { return flushLoop(ctx, log, *flushEvery) })
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// flushLoop flushes metrics every interval and closes the backend on
// shutdown.
func flushLoop(ctx context.Context, log zerolog.Logger, every time.Duration) error {
	if every <= 0 {
		every = 30 * time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := metrics.Close(); err != nil {
				log.Warn().Err(err).Msg("metrics flush")
			}
			return nil
		case <-t.C:
			if err := metrics.Flush(); err != nil {
				log.Warn().Err(err).Msg("metrics flush")
			}
		}
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
