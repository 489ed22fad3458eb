// Package importer runs the second pass of an import: it rewinds the source,
// coerces every field against its resolved column type and inserts the rows
// in fixed-size transactional batches under an error budget.
//
// Each row of a batch executes inside its own SAVEPOINT. A row the database
// rejects is rolled back alone; the rows already staged in the open batch
// stay staged and commit with it.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"csvimport/internal/config"
	"csvimport/internal/errs"
	"csvimport/internal/metrics"
	"csvimport/internal/parser/csv"
	sqliteddl "csvimport/internal/storage/sqlite/ddl"
	"csvimport/internal/typeinfer"
)

// Result summarizes an import pass. RowsImported counts committed rows only:
// rows staged in a batch that was rolled back are not included.
type Result struct {
	RowsImported int64 `json:"rowsImported"`
	RowsFailed   int64 `json:"rowsFailed"`
	Batches      int64 `json:"batches"`
	State        State `json:"state"`
}

const savepoint = "csvimport_row"

// Import streams src into plan.Table through db.
//
// With transactions enabled, rows are grouped into batches of
// policy.BatchSize source rows, each committed in one transaction. Without
// them, each row autocommits. A row failure (coercion or rejection by the
// database) aborts the run unless policy.ContinueOnError is set; then it is
// counted and skipped until policy.MaxRowErrors failures (when > 0) abort the
// run with a KindErrorBudgetExceeded error. Aborting rolls back the open
// batch. Any other database failure is a fatal KindStorage error.
//
// The returned Result is valid on error as well.
func Import(ctx context.Context, src io.ReadSeeker, db *sql.DB, plan Plan, policy config.ImportPolicy) (Result, error) {
	if src == nil {
		return Result{}, errs.New(errs.KindConfiguration, "import: nil source")
	}
	if db == nil {
		return Result{}, errs.New(errs.KindConfiguration, "import: nil database handle")
	}
	if len(plan.Fields) == 0 {
		return Result{}, errs.New(errs.KindConfiguration, "import: plan has no fields")
	}
	if policy.EnableTransactions && policy.BatchSize <= 0 {
		return Result{}, errs.Newf(errs.KindConfiguration, "import: batchSize must be > 0, got %d", policy.BatchSize)
	}
	for _, f := range plan.Fields {
		if f.Source < 0 || f.Source >= plan.Width {
			return Result{}, errs.Newf(errs.KindConfiguration,
				"import: column %q reads source index %d of %d", f.Column, f.Source, plan.Width)
		}
	}

	r := &run{
		db:     db,
		plan:   plan,
		policy: policy,
		log:    zerolog.Ctx(ctx).With().Str("table", plan.Table).Logger(),
		args:   make([]any, len(plan.Fields)),
		start:  time.Now(),
	}
	r.lastFlush = r.start
	return r.exec(ctx, src)
}

type run struct {
	db     *sql.DB
	plan   Plan
	policy config.ImportPolicy
	log    zerolog.Logger
	args   []any

	stmt   *sql.Stmt
	tx     *sql.Tx
	txStmt *sql.Stmt

	state   State
	pending int   // source rows processed in the open batch
	staged  int64 // rows inserted in the open batch
	res     Result

	start     time.Time
	lastFlush time.Time
	lastTotal int64
}

func (r *run) exec(ctx context.Context, src io.ReadSeeker) (Result, error) {
	defer func() {
		if r.stmt != nil {
			_ = r.stmt.Close()
		}
	}()

	if err := csv.Rewind(src); err != nil {
		return r.abort(errs.Wrap(errs.KindSourceFormat, "rewind source", err))
	}
	rd := csv.NewReader(src, r.plan.CSV)
	header, err := rd.Header()
	if err != nil {
		return r.abort(errs.Wrap(errs.KindSourceFormat, "read header", err).AtLine(1))
	}
	if len(header) != r.plan.Width {
		return r.abort(errs.Newf(errs.KindSourceFormat,
			"header has %d columns, scan saw %d", len(header), r.plan.Width).AtLine(1))
	}

	query, err := sqliteddl.BuildInsertSQL(r.plan.Table, r.plan.Columns())
	if err != nil {
		return r.abort(errs.Wrap(errs.KindConfiguration, "render insert", err))
	}
	r.stmt, err = r.db.PrepareContext(ctx, query)
	if err != nil {
		return r.abort(errs.Wrap(errs.KindStorage, "prepare insert", err))
	}
	r.setState(SchemaEnsured)
	r.setState(Importing)

	for {
		if err := ctx.Err(); err != nil {
			return r.abort(err)
		}
		rec, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return r.abort(sourceError(err, rd.Line()))
		}

		if err := r.row(ctx, rec, rd.Line()); err != nil {
			return r.abort(err)
		}

		if r.policy.EnableTransactions {
			r.pending++
			if r.pending >= r.policy.BatchSize {
				if err := r.commit(); err != nil {
					return r.abort(err)
				}
			}
		}
	}

	if err := r.commit(); err != nil {
		return r.abort(err)
	}
	r.setState(Committed)
	r.log.Info().
		Int64("rows_imported", r.res.RowsImported).
		Int64("rows_failed", r.res.RowsFailed).
		Int64("batches", r.res.Batches).
		Dur("elapsed", time.Since(r.start).Truncate(time.Millisecond)).
		Msg("import complete")
	return r.res, nil
}

// row coerces and inserts one record. It returns a non-nil error only when
// the run must stop.
func (r *run) row(ctx context.Context, rec []string, line int) error {
	if err := r.bind(rec, line); err != nil {
		return r.fail(err, line)
	}

	if !r.policy.EnableTransactions {
		if _, err := r.stmt.ExecContext(ctx, r.args...); err != nil {
			if !rejected(err) {
				return errs.Wrap(errs.KindStorage, "insert row", err).AtLine(line)
			}
			return r.fail(errs.Wrap(errs.KindRowRejected, "insert row", err).AtLine(line), line)
		}
		r.res.RowsImported++
		metrics.RecordRow(r.plan.Table, metrics.RowImported, 1)
		return nil
	}

	if err := r.begin(ctx); err != nil {
		return err
	}
	if _, err := r.tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
		return errs.Wrap(errs.KindStorage, "open row savepoint", err).AtLine(line)
	}
	if _, err := r.txStmt.ExecContext(ctx, r.args...); err != nil {
		if !rejected(err) {
			return errs.Wrap(errs.KindStorage, "insert row", err).AtLine(line)
		}
		if _, rbErr := r.tx.ExecContext(ctx, "ROLLBACK TO "+savepoint); rbErr != nil {
			return errs.Wrap(errs.KindStorage, "roll back row savepoint", rbErr).AtLine(line)
		}
		if _, relErr := r.tx.ExecContext(ctx, "RELEASE "+savepoint); relErr != nil {
			return errs.Wrap(errs.KindStorage, "release row savepoint", relErr).AtLine(line)
		}
		return r.fail(errs.Wrap(errs.KindRowRejected, "insert row", err).AtLine(line), line)
	}
	if _, err := r.tx.ExecContext(ctx, "RELEASE "+savepoint); err != nil {
		return errs.Wrap(errs.KindStorage, "release row savepoint", err).AtLine(line)
	}
	r.staged++
	return nil
}

// bind fills r.args from rec. A blank field in a typed column binds NULL;
// Text columns keep the raw value.
func (r *run) bind(rec []string, line int) error {
	for i, f := range r.plan.Fields {
		raw := rec[f.Source]
		if f.Type != typeinfer.Text && f.Type != typeinfer.Unknown && isBlank(raw) {
			r.args[i] = nil
			continue
		}
		v, err := typeinfer.Coerce(raw, f.Type)
		if err != nil {
			return errs.Wrap(errs.KindRowCoercion, fmt.Sprintf("column %q", f.Column), err).AtLine(line)
		}
		if f.Exact {
			r.args[i] = v.ExactArg()
		} else {
			r.args[i] = v.Arg()
		}
	}
	return nil
}

// fail records a row failure and applies the error policy.
func (r *run) fail(err error, line int) error {
	r.res.RowsFailed++
	metrics.RecordRow(r.plan.Table, metrics.RowFailed, 1)

	if !r.policy.ContinueOnError {
		return err
	}
	r.log.Warn().Err(err).Int("line", line).Int64("rows_failed", r.res.RowsFailed).Msg("row skipped")

	if limit := r.policy.MaxRowErrors; limit > 0 && r.res.RowsFailed >= int64(limit) {
		return &errs.Error{
			Kind:    errs.KindErrorBudgetExceeded,
			Message: fmt.Sprintf("%d row failures reached maxRowErrors %d", r.res.RowsFailed, limit),
			Line:    line,
			Cause:   err,
		}
	}
	return nil
}

func (r *run) begin(ctx context.Context) error {
	if r.tx != nil {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.KindStorage, "begin batch", err)
	}
	r.tx = tx
	r.txStmt = tx.StmtContext(ctx, r.stmt)
	return nil
}

// commit closes the open batch. A batch in which every row failed has no
// transaction and counts as nothing.
func (r *run) commit() error {
	r.pending = 0
	if r.tx == nil {
		return nil
	}
	tx, n := r.tx, r.staged
	r.tx, r.txStmt, r.staged = nil, nil, 0
	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.KindStorage, "commit batch", err)
	}

	r.res.RowsImported += n
	r.res.Batches++
	metrics.RecordRow(r.plan.Table, metrics.RowImported, n)
	metrics.RecordBatches(r.plan.Table, 1)

	now := time.Now()
	sinceLast := now.Sub(r.lastFlush)
	rps := float64(0)
	if sinceLast > 0 {
		rps = float64(r.res.RowsImported-r.lastTotal) / sinceLast.Seconds()
	}
	r.log.Debug().
		Int64("batch", r.res.Batches).
		Int64("inserted", n).
		Int64("total_inserted", r.res.RowsImported).
		Float64("rps", rps).
		Dur("elapsed", now.Sub(r.start).Truncate(time.Millisecond)).
		Msg("batch committed")
	r.lastFlush = now
	r.lastTotal = r.res.RowsImported
	return nil
}

// abort rolls back the open batch and returns err with the partial result.
func (r *run) abort(err error) (Result, error) {
	if r.tx != nil {
		if rbErr := r.tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.log.Error().Err(rbErr).Msg("rollback open batch")
		}
		r.tx, r.txStmt, r.staged, r.pending = nil, nil, 0, 0
	}
	r.setState(Aborted)
	r.log.Error().Err(err).
		Int64("rows_imported", r.res.RowsImported).
		Int64("rows_failed", r.res.RowsFailed).
		Msg("import aborted")
	return r.res, err
}

func (r *run) setState(s State) {
	r.log.Debug().Stringer("from", r.state).Stringer("to", s).Msg("import state")
	r.state = s
	r.res.State = s
}

// rejected reports whether err is the database refusing a single row because
// of its content, as opposed to a failure of the database itself.
func rejected(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_MISMATCH, sqlite3.SQLITE_TOOBIG:
		return true
	default:
		return false
	}
}

func sourceError(err error, line int) error {
	var rse *csv.RowShapeError
	if errors.As(err, &rse) {
		return errs.Newf(errs.KindSourceFormat, "expected %d fields, got %d", rse.Want, rse.Got).AtLine(rse.Line)
	}
	return errs.Wrap(errs.KindSourceFormat, "malformed record", err).AtLine(line)
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}
