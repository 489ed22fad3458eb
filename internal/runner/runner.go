// Package runner wires one import run end to end:
//
//	validate config -> scan -> open database -> ensure table -> plan -> import
//
// Each step is timed and reported through the metrics package. The run owns
// its database handle from open to return, on every exit path.
package runner

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"csvimport/internal/config"
	"csvimport/internal/errs"
	"csvimport/internal/importer"
	"csvimport/internal/logger"
	"csvimport/internal/metrics"
	"csvimport/internal/schema"
	"csvimport/internal/storage/sqlite"
	sqliteddl "csvimport/internal/storage/sqlite/ddl"
)

// Step names reported to metrics and logs.
const (
	StepScan        = "scan"
	StepOpen        = "open"
	StepEnsureTable = "ensure_table"
	StepImport      = "import"
)

// RunInput is everything a run needs. Source must be seekable: both passes
// rewind it. Callers holding a plain stream spool it first (source.Spool).
type RunInput struct {
	Source io.ReadSeeker
	// SourceDigest is copied into the Summary as-is.
	SourceDigest string
	DBPath       string
	Table        string
	Config       config.Config
}

// Summary is the outcome of a run. On error it still carries whatever the
// run had learned and committed before stopping.
type Summary struct {
	RunID        string               `json:"runId"`
	TableName    string               `json:"tableName"`
	Columns      schema.ColumnTypeMap `json:"columns"`
	RowsImported int64                `json:"rowsImported"`
	RowsFailed   int64                `json:"rowsFailed"`
	Batches      int64                `json:"batches"`
	SourceDigest string               `json:"sourceDigest,omitempty"`
	TableCreated bool                 `json:"tableCreated"`
	Skipped      []string             `json:"skippedColumns,omitempty"`
	State        importer.State       `json:"state"`
	// TableRows is the destination row count after a successful run,
	// including rows from earlier runs into the same table.
	TableRows int64 `json:"tableRows"`
}

// RunImport scans in.Source, creates the destination table when missing and
// imports every row under the configured policy.
//
// Configuration problems (invalid config, bad primary key declaration, empty
// table name) are reported before the database is opened. The logger found
// in ctx, if any, is extended with run_id and table fields for the run.
func RunImport(ctx context.Context, in RunInput) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), TableName: strings.TrimSpace(in.Table), SourceDigest: in.SourceDigest}
	ctx = logger.WithRun(ctx, *zerolog.Ctx(ctx), sum.RunID, sum.TableName)
	log := zerolog.Ctx(ctx)

	if in.Source == nil {
		return sum, errs.New(errs.KindConfiguration, "no source")
	}
	if err := sqliteddl.CheckTableName(sum.TableName); err != nil {
		return sum, err
	}
	if strings.TrimSpace(in.DBPath) == "" {
		return sum, errs.New(errs.KindConfiguration, "database path must not be empty")
	}
	cfg := in.Config
	issues := config.ValidateConfig(cfg)
	for _, is := range issues {
		if is.Severity == config.SeverityWarning {
			log.Warn().Str("path", is.Path).Msg(is.Message)
		}
	}
	if err := issues.Err(); err != nil {
		return sum, err
	}

	log.Info().Str("db", in.DBPath).Msg("import run started")
	start := time.Now()

	var cols schema.Columns
	err := step(ctx, sum.TableName, StepScan, func() error {
		var err error
		cols, err = schema.Scan(ctx, in.Source, cfg.CSV.ReaderOptions())
		return err
	})
	if err != nil {
		return sum, err
	}
	sum.Columns = cols.Map

	// Explicit-mode rules are checked before the database file is touched.
	if _, err := sqliteddl.Build(sum.TableName, cfg.Destination, &cols.Map); err != nil {
		return sum, err
	}

	var (
		repo      *sqlite.Repository
		closeRepo = func() {}
	)
	err = step(ctx, sum.TableName, StepOpen, func() error {
		r, closeFn, err := sqlite.NewRepository(ctx, sqlite.ConfigFrom(in.DBPath, cfg.Connection))
		if err != nil {
			return errs.Wrap(errs.KindStorage, "open destination database", err)
		}
		repo, closeRepo = r, closeFn
		return nil
	})
	if err != nil {
		return sum, err
	}
	defer closeRepo()
	if mode, err := repo.Pragma(ctx, "journal_mode"); err == nil {
		log.Debug().Str("journal_mode", mode).Msg("destination database open")
	}

	var plan importer.Plan
	err = step(ctx, sum.TableName, StepEnsureTable, func() error {
		td, created, err := sqliteddl.EnsureTable(ctx, repo, sum.TableName, cfg.Destination, &cols.Map)
		if err != nil {
			return err
		}
		sum.TableCreated = created
		if !created {
			if ddl, err := repo.Schema(ctx, td.FQN); err == nil {
				log.Debug().Str("ddl", ddl).Msg("reusing destination table")
			}
		}
		plan, err = importer.NewPlan(td, cols, cfg.Destination)
		return err
	})
	if err != nil {
		return sum, err
	}
	plan.CSV = cfg.CSV.ReaderOptions()
	sum.Skipped = plan.Skipped
	if len(plan.Skipped) > 0 {
		log.Warn().Strs("columns", plan.Skipped).Msg("source columns not mapped to the destination; skipping")
	}

	var res importer.Result
	err = step(ctx, sum.TableName, StepImport, func() error {
		var err error
		res, err = importer.Import(ctx, in.Source, repo.DB(), plan, cfg.Import)
		return err
	})
	sum.RowsImported, sum.RowsFailed, sum.Batches, sum.State = res.RowsImported, res.RowsFailed, res.Batches, res.State
	if err != nil {
		return sum, err
	}

	n, err := repo.Count(ctx, sum.TableName)
	if err != nil {
		return sum, errs.Wrap(errs.KindStorage, "count destination rows", err)
	}
	sum.TableRows = n

	log.Info().
		Int64("rows_imported", sum.RowsImported).
		Int64("table_rows", sum.TableRows).
		Int64("rows_failed", sum.RowsFailed).
		Dur("elapsed", time.Since(start).Truncate(time.Millisecond)).
		Msg("import run finished")
	return sum, nil
}

// ScanOnly runs the scan pass alone, for previews. It never touches a
// database.
func ScanOnly(ctx context.Context, src io.ReadSeeker, cfg config.Config) (schema.Columns, error) {
	if src == nil {
		return schema.Columns{}, errs.New(errs.KindConfiguration, "no source")
	}
	if err := config.ValidateConfig(cfg).Err(); err != nil {
		return schema.Columns{}, err
	}
	var cols schema.Columns
	err := step(ctx, "", StepScan, func() error {
		var err error
		cols, err = schema.Scan(ctx, src, cfg.CSV.ReaderOptions())
		return err
	})
	return cols, err
}

// step runs fn as the named step of table, recording its duration and
// outcome.
func step(ctx context.Context, table, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	metrics.RecordStep(table, name, err, d)

	ev := zerolog.Ctx(ctx).Debug()
	if err != nil {
		ev = zerolog.Ctx(ctx).Error().Err(err)
	}
	ev.Str("step", name).Dur("took", d.Truncate(time.Microsecond)).Msg("step done")
	return err
}
