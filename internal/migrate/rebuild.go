package migrate

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/cloesce/core/cidl"
)

// rebuildTable performs SQLite's rename-recreate-copy-drop dance for a
// change SQLite cannot express as an in-place ALTER (a primary key
// change, or a foreign-key column's type/target change). The DDL
// portions are hand-built (see ddl.go); the data copy's SELECT, which
// needs per-column CAST/default-literal expressions, is built with goqu
// since that's genuine DML construction goqu is suited for. Grounded on
// the `AlterKind::RebuildTable` arm of `MigrateTables::alter`.
func rebuildTable(model, lmModel cidl.Model, modelLookup *cidl.OrderedMap[cidl.Model], pragmaOff, pragmaOn, pragmaCheck string) []string {
	var res []string

	hasFK := false
	for _, c := range model.Columns {
		hasFK = hasFK || c.ForeignKeyReference != nil
	}
	for _, c := range lmModel.Columns {
		hasFK = hasFK || c.ForeignKeyReference != nil
	}
	if hasFK {
		res = append(res, pragmaOff)
	}

	logrus.Warnf("TABLE REBUILD! Rebuilding a table %q by migrating existing data to a new table schema.", lmModel.Name)

	nameHash := fmt.Sprintf("%s_%d", lmModel.Name, lmModel.Hash)
	res = append(res, fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", quoteIdent(lmModel.Name), quoteIdent(nameHash)))

	res = append(res, createTables([]cidl.Model{model}, modelLookup, nil)...)
	res = append(res, copyRebuiltData(model, lmModel, nameHash))
	res = append(res, fmt.Sprintf("DROP TABLE %s;", quoteIdent(nameHash)))

	if hasFK {
		res = append(res, pragmaOn, pragmaCheck)
	}

	return res
}

func copyRebuiltData(model, lmModel cidl.Model, oldName string) string {
	lmColLookup := make(map[string]cidl.NamedTypedValue, len(lmModel.Columns)+1)
	for _, c := range lmModel.Columns {
		lmColLookup[c.Value.Name] = c.Value
	}
	lmColLookup[lmModel.PrimaryKey.Name] = *lmModel.PrimaryKey

	columns := make([]cidl.NamedTypedValue, 0, len(model.Columns)+1)
	for _, c := range model.Columns {
		columns = append(columns, c.Value)
	}
	columns = append(columns, *model.PrimaryKey)

	colNames := make([]interface{}, 0, len(columns))
	exprs := make([]interface{}, 0, len(columns))
	for _, c := range columns {
		colNames = append(colNames, c.Name)

		lmC, ok := lmColLookup[c.Name]
		switch {
		case !ok:
			exprs = append(exprs, goqu.L(sqlDefaultLiteral(c.Type)))
		case cidl.TypesEqual(lmC.Type, c.Type):
			exprs = append(exprs, goqu.I(lmC.Name))
		default:
			exprs = append(exprs, goqu.L(fmt.Sprintf("CAST(%s AS %s)", quoteIdent(lmC.Name), castSQLType(c.Type))))
		}
	}

	dialect := goqu.Dialect("sqlite3")
	selectDS := dialect.From(oldName).Select(exprs...)
	insertDS := dialect.Insert(model.Name).Cols(colNames...).FromQuery(selectDS)

	sql, _, err := insertDS.ToSQL()
	if err != nil {
		logrus.Errorf("failed to build rebuild copy query for %q: %v", model.Name, err)
		return fmt.Sprintf("-- failed to build data copy for %s: %v", model.Name, err)
	}
	return sql + ";"
}
