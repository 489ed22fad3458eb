package ddl

import (
	"fmt"
	"strconv"
	"strings"

	"csvimport/internal/config"
	gddl "csvimport/internal/ddl"
	"csvimport/internal/schema"
)

// RowIDColumn is the synthetic primary key added in auto mode.
const RowIDColumn = "row_id"

// FromColumnMap derives the auto-mode table: a synthetic auto-increment key
// followed by one column per map entry, typed via MapType. All data columns
// are nullable since blank cells bind NULL.
//
// The key is named row_id unless a scanned column already uses that name,
// in which case row_id_2, row_id_3, ... is used.
func FromColumnMap(table string, m schema.ColumnTypeMap) gddl.TableDef {
	defs := make([]gddl.ColumnDef, 0, m.Len()+1)
	defs = append(defs, gddl.ColumnDef{
		Name:          rowIDName(m),
		SQLType:       "INTEGER",
		PrimaryKey:    true,
		AutoIncrement: true,
	})
	for i := 0; i < m.Len(); i++ {
		c := m.At(i)
		defs = append(defs, gddl.ColumnDef{
			Name:     c.Name,
			SQLType:  MapType(c.Type),
			Nullable: true,
		})
	}
	return gddl.TableDef{FQN: table, Columns: defs}
}

func rowIDName(m schema.ColumnTypeMap) string {
	name := RowIDColumn
	for n := 2; ; n++ {
		if _, taken := m.Type(name); !taken {
			return name
		}
		name = RowIDColumn + "_" + strconv.Itoa(n)
	}
}

// FromDestination derives the explicit-mode table from declared column specs,
// in declaration order. The primary key column becomes INTEGER PRIMARY KEY
// AUTOINCREMENT; enum columns get a CHECK over their values; nullable "N"
// renders NOT NULL. d must have passed Validate.
func FromDestination(table string, d config.Destination) (gddl.TableDef, error) {
	if d.Auto {
		return gddl.TableDef{}, fmt.Errorf("sqlite ddl: destination is in auto mode")
	}
	defs := make([]gddl.ColumnDef, 0, len(d.Columns))
	for _, c := range d.Columns {
		dt, err := config.ParseDatatype(c.Datatype)
		if err != nil {
			return gddl.TableDef{}, fmt.Errorf("sqlite ddl: column %s: %w", c.Source, err)
		}
		name := c.Name()
		def := gddl.ColumnDef{
			Name:     name,
			SQLType:  MapDatatype(dt),
			Nullable: !c.NotNull(),
		}
		switch {
		case c.PrimaryKey:
			def.SQLType = "INTEGER"
			def.PrimaryKey = true
			def.AutoIncrement = true
		case dt.Kind == config.DatatypeEnum:
			def.Check = InCheck(name, c.Values)
		}
		defs = append(defs, def)
	}
	return gddl.TableDef{FQN: strings.TrimSpace(table), Columns: defs}, nil
}
