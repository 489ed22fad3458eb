// This file adds a lightweight linter for Config values. It performs static
// checks over a decoded Config and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"csvimport/internal/errs"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users but
	// does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "import.batchSize",
// "destinationTable.id.datatype"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Path     string        `json:"path"`
	Message  string        `json:"message"`
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Issues is the result of ValidateConfig.
type Issues []Issue

// Errors returns only the error-severity issues.
func (is Issues) Errors() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Err folds all error-severity issues into one KindConfiguration error, or
// returns nil when there are none. Warnings never fail.
func (is Issues) Err() error {
	errsOnly := is.Errors()
	if len(errsOnly) == 0 {
		return nil
	}
	parts := make([]string, len(errsOnly))
	for i, iss := range errsOnly {
		parts[i] = iss.Path + ": " + iss.Message
	}
	return errs.New(errs.KindConfiguration, strings.Join(parts, "; "))
}

// ValidateConfig performs static validation of cfg. It does not mutate cfg
// and never touches the database.
//
// Example:
//
//	cfg, err := config.Load(path)
//	if err != nil { ... }
//	issues := config.ValidateConfig(cfg)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
//	if err := issues.Err(); err != nil { ... }
func ValidateConfig(cfg Config) Issues {
	var issues Issues
	issues = append(issues, validateConnection(cfg.Connection)...)
	issues = append(issues, validateImport(cfg.Import)...)
	issues = append(issues, validateCSV(cfg.CSV)...)
	issues = append(issues, cfg.Destination.issues("destinationTable")...)
	return issues
}

var (
	journalModes = map[string]struct{}{
		"DELETE": {}, "TRUNCATE": {}, "PERSIST": {}, "MEMORY": {}, "WAL": {}, "OFF": {},
	}
	// Pragma names and values end up in the connection string.
	pragmaNameRe  = regexp.MustCompile(`^[a-z_]+$`)
	pragmaValueRe = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)
)

func validateConnection(c ConnectionPolicy) []Issue {
	var issues []Issue

	if c.Timeout < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "connection.timeout",
			Message:  "timeout must not be negative",
		})
	} else if c.Timeout == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "connection.timeout",
			Message:  "timeout=0 disables the busy timeout; a locked database fails immediately",
		})
	}

	if mode := strings.ToUpper(strings.TrimSpace(c.JournalMode)); mode != "" {
		if _, ok := journalModes[mode]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "connection.journalMode",
				Message:  fmt.Sprintf("unknown journal mode %q", c.JournalMode),
			})
		}
	}

	for k, v := range c.Pragma {
		p := "connection.pragma." + k
		switch strings.ToLower(k) {
		case "busy_timeout", "foreign_keys", "journal_mode":
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     p,
				Message:  "overrides a dedicated connection setting",
			})
		}
		if !pragmaNameRe.MatchString(k) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     p,
				Message:  "pragma name must be lowercase letters and underscores",
			})
		}
		if !pragmaValueRe.MatchString(v) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     p,
				Message:  fmt.Sprintf("invalid pragma value %q", v),
			})
		}
	}

	return issues
}

func validateImport(p ImportPolicy) []Issue {
	var issues []Issue

	if p.BatchSize <= 0 {
		sev := SeverityWarning
		if p.EnableTransactions {
			sev = SeverityError
		}
		issues = append(issues, Issue{
			Severity: sev,
			Path:     "import.batchSize",
			Message:  fmt.Sprintf("batchSize=%d; transactional imports need a positive batch size", p.BatchSize),
		})
	}
	if p.MaxRowErrors < 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "import.maxRowErrors",
			Message:  "negative maxRowErrors is treated as unlimited",
		})
	}
	if !p.ContinueOnError && p.MaxRowErrors > 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "import.maxRowErrors",
			Message:  "maxRowErrors has no effect when continueOnError is false",
		})
	}
	if strings.TrimSpace(p.LogLevel) != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(p.LogLevel)); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "import.logLevel",
				Message:  fmt.Sprintf("unknown log level %q", p.LogLevel),
			})
		}
	}

	return issues
}

func validateCSV(o CSVOptions) []Issue {
	if o.Delimiter == "" {
		return nil
	}
	r, size := utf8.DecodeRuneInString(o.Delimiter)
	if size != len(o.Delimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return []Issue{{
			Severity: SeverityError,
			Path:     "csv.delimiter",
			Message:  fmt.Sprintf("delimiter must be a single character other than quote or newline, got %q", o.Delimiter),
		}}
	}
	return nil
}
