package ddl

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"csvimport/internal/config"
	gddl "csvimport/internal/ddl"
	"csvimport/internal/errs"
	"csvimport/internal/schema"
)

// Catalog is the slice of the destination database EnsureTable needs.
// *sqlite.Repository implements it.
type Catalog interface {
	TableExists(ctx context.Context, name string) (bool, error)
	Exec(ctx context.Context, sql string) error
}

// CheckTableName rejects destination names that are blank or qualified.
// Every statement and catalog lookup treats the name as a single table in
// the main schema, so "main.orders" or "sales.q1" is refused up front.
func CheckTableName(table string) error {
	table = strings.TrimSpace(table)
	switch {
	case table == "":
		return errs.New(errs.KindConfiguration, "destination table name must not be empty")
	case strings.Contains(table, "."):
		return errs.Newf(errs.KindConfiguration, "destination table name %q must not contain '.'", table)
	}
	return nil
}

// Build returns the table definition for dest: explicit specs when dest lists
// columns, otherwise the auto layout over cols. It validates the explicit
// primary key rule and never touches the database.
func Build(table string, dest config.Destination, cols *schema.ColumnTypeMap) (gddl.TableDef, error) {
	if err := CheckTableName(table); err != nil {
		return gddl.TableDef{}, err
	}
	if !dest.Auto {
		if err := dest.Validate(); err != nil {
			return gddl.TableDef{}, err
		}
		td, err := FromDestination(table, dest)
		if err != nil {
			return gddl.TableDef{}, errs.Wrap(errs.KindConfiguration, "build table definition", err)
		}
		return td, nil
	}
	if cols == nil {
		return gddl.TableDef{}, errs.New(errs.KindConfiguration, "auto destination requires a scanned column map")
	}
	if cols.Len() == 0 {
		return gddl.TableDef{}, errs.New(errs.KindConfiguration, "auto destination requires at least one column")
	}
	return FromColumnMap(table, *cols), nil
}

// EnsureTable creates the destination table unless it already exists. It is
// idempotent: an existing table is left untouched, whatever its shape.
//
// Configuration problems (explicit primary key rule, missing column map) are
// reported before the catalog is queried. The returned definition describes
// the table that would have been created; created reports whether DDL ran.
func EnsureTable(
	ctx context.Context,
	cat Catalog,
	table string,
	dest config.Destination,
	cols *schema.ColumnTypeMap,
) (td gddl.TableDef, created bool, err error) {
	td, err = Build(table, dest, cols)
	if err != nil {
		return gddl.TableDef{}, false, err
	}

	log := zerolog.Ctx(ctx)

	exists, err := cat.TableExists(ctx, td.FQN)
	if err != nil {
		return gddl.TableDef{}, false, errs.Wrap(errs.KindStorage, "check destination table", err)
	}
	if exists {
		log.Debug().Str("table", td.FQN).Msg("destination table exists; skipping DDL")
		return td, false, nil
	}

	stmt, err := BuildCreateTableSQL(td)
	if err != nil {
		return gddl.TableDef{}, false, errs.Wrap(errs.KindConfiguration, "render table definition", err)
	}
	if err := cat.Exec(ctx, stmt); err != nil {
		return gddl.TableDef{}, false, errs.Wrap(errs.KindStorage, "create destination table", err)
	}
	log.Info().Str("table", td.FQN).Int("columns", len(td.Columns)).Msg("created destination table")
	log.Debug().Str("ddl", stmt).Msg("table definition")
	return td, true, nil
}
