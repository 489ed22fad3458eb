package sqlite

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"csvimport/internal/config"
)

// Config holds the connection settings for one destination database file.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string

	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration

	ForeignKeys bool

	// JournalMode is passed to PRAGMA journal_mode; empty leaves the default.
	JournalMode string

	// Pragma holds additional name -> value pragmas applied on every
	// connection.
	Pragma map[string]string
}

// ConfigFrom builds a Config for path from the connection policy of a run.
func ConfigFrom(path string, p config.ConnectionPolicy) Config {
	return Config{
		Path:        path,
		BusyTimeout: p.BusyTimeout(),
		ForeignKeys: p.EnableForeignKeys,
		JournalMode: p.JournalMode,
		Pragma:      p.Pragma,
	}
}

// DSN renders cfg as a modernc.org/sqlite connection string. Every pragma is
// passed as a _pragma query parameter so the driver applies it to each new
// connection:
//
//	file:data.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)
func (c Config) DSN() string {
	pragmas := []string{fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds())}
	if c.ForeignKeys {
		pragmas = append(pragmas, "foreign_keys(1)")
	} else {
		pragmas = append(pragmas, "foreign_keys(0)")
	}
	if jm := strings.TrimSpace(c.JournalMode); jm != "" && c.Path != ":memory:" {
		pragmas = append(pragmas, fmt.Sprintf("journal_mode(%s)", strings.ToUpper(jm)))
	}

	names := make([]string, 0, len(c.Pragma))
	for k := range c.Pragma {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		pragmas = append(pragmas, fmt.Sprintf("%s(%s)", k, c.Pragma[k]))
	}

	q := make(url.Values)
	q["_pragma"] = pragmas
	return "file:" + uriPathEscaper.Replace(c.Path) + "?" + q.Encode()
}

// uriPathEscaper percent-encodes the characters that end or corrupt the path
// part of an SQLite URI filename. SQLite decodes them when it opens the file.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")
