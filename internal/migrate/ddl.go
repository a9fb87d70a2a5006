package migrate

import (
	"fmt"
	"strings"

	"github.com/cloesce/core/cidl"
)

// quoteIdent wraps a SQLite identifier in double quotes. Hand-built
// rather than routed through goqu, which has no DDL builder (see
// SPEC_FULL.md's DOMAIN STACK note on goqu).
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ddlColumnType maps a column's root type to its SQLite storage class.
func ddlColumnType(t cidl.CidlType) string {
	inner := t
	if inner.Kind == cidl.Nullable {
		inner = *inner.Of
	}
	switch inner.Kind {
	case cidl.Integer, cidl.Boolean:
		return "INTEGER"
	case cidl.Real:
		return "REAL"
	case cidl.Blob:
		return "BLOB"
	default: // Text, DateIso
		return "TEXT"
	}
}

// sqlDefaultLiteral is the user-agnostic default literal backfilled into
// a newly added column for existing rows. Grounded on `sql_default`;
// user-specified defaults remain a TODO in the original and are left
// unimplemented here too (see DESIGN.md open questions).
func sqlDefaultLiteral(t cidl.CidlType) string {
	if t.IsNullable() {
		return "NULL"
	}
	switch t.RootType().Kind {
	case cidl.Integer, cidl.Boolean:
		return "0"
	case cidl.Real:
		return "0.0"
	default: // Text, DateIso, Blob
		return "''"
	}
}

// typedColumnDDL renders a single column definition, grounded on
// `typed_column`.
func typedColumnDDL(name string, t cidl.CidlType, withDefault bool) string {
	var b strings.Builder
	b.WriteString(quoteIdent(name))
	b.WriteByte(' ')
	b.WriteString(ddlColumnType(t))
	if !t.IsNullable() {
		b.WriteString(" NOT NULL")
	}
	if withDefault {
		fmt.Fprintf(&b, " DEFAULT %s", sqlDefaultLiteral(t))
	}
	return b.String()
}

// castSQLType is the CAST(...) target used when a rebuilt table's column
// changed type but keeps the same column name.
func castSQLType(t cidl.CidlType) string {
	switch t.RootType().Kind {
	case cidl.Integer, cidl.Boolean:
		return "INTEGER"
	case cidl.Real:
		return "REAL"
	default:
		return "TEXT"
	}
}
