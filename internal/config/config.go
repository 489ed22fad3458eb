// Package config defines the configuration model for csvimport runs.
//
// A config file is JSON or YAML and mirrors the struct graph below:
//
//	{
//	  "connection": { "timeout": 5, "enableForeignKeys": true, "journalMode": "WAL",
//	                  "pragma": { "synchronous": "NORMAL" } },
//	  "import":     { "batchSize": 1000, "enableTransactions": true,
//	                  "continueOnError": true, "maxRowErrors": 100, "logLevel": "info" },
//	  "csv":        { "delimiter": ",", "trimSpace": false },
//	  "destinationTable": { "auto": { "datatype": "auto" } }
//	}
//
// Fields missing from a file keep the values from Default.
package config

import (
	"time"
	"unicode/utf8"

	"csvimport/internal/parser/csv"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	Connection  ConnectionPolicy `json:"connection" yaml:"connection"`
	Import      ImportPolicy     `json:"import" yaml:"import"`
	CSV         CSVOptions       `json:"csv" yaml:"csv"`
	Destination Destination      `json:"destinationTable" yaml:"destinationTable"`
}

// ConnectionPolicy configures the embedded database handle.
type ConnectionPolicy struct {
	// Timeout is the busy timeout in seconds.
	Timeout           int               `json:"timeout" yaml:"timeout"`
	EnableForeignKeys bool              `json:"enableForeignKeys" yaml:"enableForeignKeys"`
	JournalMode       string            `json:"journalMode" yaml:"journalMode"`
	Pragma            map[string]string `json:"pragma,omitempty" yaml:"pragma,omitempty"`
}

// BusyTimeout returns Timeout as a duration.
func (c ConnectionPolicy) BusyTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ImportPolicy controls batching and the row error budget.
type ImportPolicy struct {
	BatchSize          int  `json:"batchSize" yaml:"batchSize"`
	EnableTransactions bool `json:"enableTransactions" yaml:"enableTransactions"`
	ContinueOnError    bool `json:"continueOnError" yaml:"continueOnError"`
	// MaxRowErrors aborts the run once this many rows have failed.
	// Zero or negative means no limit.
	MaxRowErrors int    `json:"maxRowErrors" yaml:"maxRowErrors"`
	LogLevel     string `json:"logLevel" yaml:"logLevel"`
}

// CSVOptions configures the delimited-text reader.
type CSVOptions struct {
	Delimiter  string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	TrimSpace  bool   `json:"trimSpace,omitempty" yaml:"trimSpace,omitempty"`
	LazyQuotes bool   `json:"lazyQuotes,omitempty" yaml:"lazyQuotes,omitempty"`
}

// ReaderOptions converts o into reader options. An empty delimiter means ','.
func (o CSVOptions) ReaderOptions() csv.Options {
	opt := csv.Options{TrimSpace: o.TrimSpace, LazyQuotes: o.LazyQuotes}
	if o.Delimiter != "" {
		opt.Comma, _ = utf8.DecodeRuneInString(o.Delimiter)
	}
	return opt
}

// Defaults applied before a file is decoded.
const (
	DefaultTimeout      = 5
	DefaultJournalMode  = "WAL"
	DefaultBatchSize    = 1000
	DefaultMaxRowErrors = 100
	DefaultLogLevel     = "info"
)

// Default returns the configuration used when no file is given: WAL journal,
// foreign keys on, 1000-row transactional batches, skip-and-count row errors
// with a budget of 100, auto destination.
func Default() Config {
	return Config{
		Connection: ConnectionPolicy{
			Timeout:           DefaultTimeout,
			EnableForeignKeys: true,
			JournalMode:       DefaultJournalMode,
		},
		Import: ImportPolicy{
			BatchSize:          DefaultBatchSize,
			EnableTransactions: true,
			ContinueOnError:    true,
			MaxRowErrors:       DefaultMaxRowErrors,
			LogLevel:           DefaultLogLevel,
		},
		Destination: AutoDestination(),
	}
}
