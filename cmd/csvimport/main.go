package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"csvimport/internal/config"
	"csvimport/internal/errs"
	"csvimport/internal/logger"
	"csvimport/internal/metrics"
	"csvimport/internal/metrics/setup"
	"csvimport/internal/runner"
	"csvimport/internal/schema"
	"csvimport/internal/source"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitInvalid = 3
)

// main imports one CSV file into a SQLite table. The input is the single
// positional argument, or "-" for stdin.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	cfgPath        string
	dbPath         string
	table          string
	spoolDir       string
	scanOnly       bool
	validate       bool
	metricsBackend string
	pushGatewayURL string
	statsdAddr     string
	logFormat      string
	verbose        bool
	input          string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("csvimport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: csvimport [flags] <file.csv | ->\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.cfgPath, "config", "", "import config path (.json, .yaml); empty uses defaults")
	fs.StringVar(&o.dbPath, "db", "csvimport.db", "destination SQLite database path")
	fs.StringVar(&o.table, "table", "", "destination table (default: input file name, sanitized)")
	fs.StringVar(&o.spoolDir, "spool-dir", "", "directory for the stdin spool file (default: OS temp dir)")
	fs.BoolVar(&o.scanOnly, "scan-only", false, "print the inferred column map and exit without importing")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog, none (overrides env METRICS_BACKEND)")
	fs.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&o.statsdAddr, "statsd-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	fs.StringVar(&o.logFormat, "log-format", "json", "log format: json, console")
	fs.BoolVar(&o.verbose, "v", false, "enable debug logs")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.validate {
		return o, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("expected exactly one input file")
	}
	o.input = fs.Arg(0)
	if o.input == "-" && strings.TrimSpace(o.table) == "" {
		return o, errors.New("-table is required when reading stdin")
	}
	return o, nil
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "csvimport: %v\n", err)
		return exitUsage
	}

	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitInvalid
	}

	issues := config.ValidateConfig(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if len(issues.Errors()) > 0 {
		fmt.Fprintf(stderr, "configuration is invalid: %s\n", displayPath(o.cfgPath))
		return exitInvalid
	}
	if o.validate {
		fmt.Fprintf(stderr, "configuration is valid: %s\n", displayPath(o.cfgPath))
		return exitOK
	}

	level := cfg.Import.LogLevel
	if o.verbose {
		level = zerolog.LevelDebugValue
	}
	log, err := logger.New(logger.Config{Level: level, Format: o.logFormat, Output: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return exitUsage
	}
	ctx = log.WithContext(ctx)

	table := strings.TrimSpace(o.table)
	if table == "" {
		table = schema.TableName(o.input)
	}

	if !o.scanOnly {
		name, err := setup.Install(setup.Options{
			Backend:        o.metricsBackend,
			PushgatewayURL: o.pushGatewayURL,
			StatsdAddr:     o.statsdAddr,
			Table:          table,
		})
		if err != nil {
			log.Warn().Err(err).Msg("metrics disabled")
		}
		log.Debug().Str("backend", name).Msg("metrics")
		defer func() {
			if err := metrics.Close(); err != nil {
				log.Warn().Err(err).Msg("metrics flush")
			}
		}()
	}

	src, err := openInput(ctx, o, stdin)
	if err != nil {
		log.Error().Err(err).Str("input", o.input).Msg("open input")
		return exitFailed
	}
	defer src.Close()

	if o.scanOnly {
		cols, err := runner.ScanOnly(ctx, src, cfg)
		if err != nil {
			log.Error().Err(err).Msg("scan failed")
			return exitCode(err)
		}
		return printJSON(stdout, stderr, cols)
	}

	start := time.Now()
	sum, err := runner.RunImport(ctx, runner.RunInput{
		Source:       src,
		SourceDigest: src.Digest(),
		DBPath:       o.dbPath,
		Table:        table,
		Config:       cfg,
	})
	if code := printJSON(stdout, stderr, sum); code != exitOK {
		return code
	}
	if err != nil {
		log.Error().Err(err).Str("kind", errs.KindOf(err).String()).Msg("import failed")
		return exitCode(err)
	}
	log.Debug().Dur("elapsed", time.Since(start).Truncate(time.Millisecond)).Msg("completed")
	return exitOK
}

// openInput opens the input file, or spools stdin so it can be read twice.
func openInput(ctx context.Context, o options, stdin io.Reader) (*source.File, error) {
	if o.input == "-" {
		return source.Spool(ctx, stdin, o.spoolDir)
	}
	return source.Open(ctx, o.input)
}

func printJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return exitFailed
	}
	return exitOK
}

func exitCode(err error) int {
	if errs.IsConfiguration(err) {
		return exitInvalid
	}
	return exitFailed
}

func displayPath(p string) string {
	if p == "" {
		return "(defaults)"
	}
	return p
}
