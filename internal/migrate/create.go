package migrate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cloesce/core/cidl"
)

// junctionPair is the (left, right) model pair backing a many-to-many
// table, already ordered lexicographically by model name.
type junctionPair struct {
	left, right cidl.Model
}

// createTables emits a CREATE TABLE IF NOT EXISTS for every model in
// sortedModels (already in dependency order) followed by one for every
// junction table in jcts. Grounded on `MigrateTables::create`.
func createTables(sortedModels []cidl.Model, modelLookup *cidl.OrderedMap[cidl.Model], jcts map[string]junctionPair) []string {
	var res []string

	for _, model := range sortedModels {
		res = append(res, createTableSQL(model, modelLookup))
		logrus.Infof("created table %q", model.Name)
	}

	ids := make([]string, 0, len(jcts))
	for id := range jcts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		jct := jcts[id]
		res = append(res, createJunctionSQL(id, jct.left, jct.right))
		logrus.Infof("created junction table %q between models %q %q", id, jct.left.Name, jct.right.Name)
	}

	return res
}

func createTableSQL(model cidl.Model, modelLookup *cidl.OrderedMap[cidl.Model]) string {
	var cols []string
	var fks []string

	cols = append(cols, typedColumnDDL(model.PrimaryKey.Name, model.PrimaryKey.Type, false)+" PRIMARY KEY")

	for _, col := range model.Columns {
		cols = append(cols, typedColumnDDL(col.Value.Name, col.Value.Type, false))

		if col.ForeignKeyReference == nil {
			continue
		}
		fkModel, _ := modelLookup.Get(*col.ForeignKeyReference)
		fks = append(fks, fmt.Sprintf(
			"FOREIGN KEY (%s) REFERENCES %s(%s) ON UPDATE CASCADE ON DELETE RESTRICT",
			quoteIdent(col.Value.Name), quoteIdent(*col.ForeignKeyReference), quoteIdent(fkModel.PrimaryKey.Name)))
	}

	body := append(cols, fks...)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoteIdent(model.Name), strings.Join(body, ",\n  "))
}

func createJunctionSQL(id string, left, right cidl.Model) string {
	const leftCol, rightCol = "left", "right"

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n"+
			"  %s NOT NULL,\n"+
			"  %s NOT NULL,\n"+
			"  PRIMARY KEY (%s, %s),\n"+
			"  FOREIGN KEY (%s) REFERENCES %s(%s) ON UPDATE CASCADE ON DELETE RESTRICT,\n"+
			"  FOREIGN KEY (%s) REFERENCES %s(%s) ON UPDATE CASCADE ON DELETE RESTRICT\n"+
			");",
		quoteIdent(id),
		typedColumnDDL(leftCol, left.PrimaryKey.Type, false),
		typedColumnDDL(rightCol, right.PrimaryKey.Type, false),
		quoteIdent(leftCol), quoteIdent(rightCol),
		quoteIdent(leftCol), quoteIdent(left.Name), quoteIdent(left.PrimaryKey.Name),
		quoteIdent(rightCol), quoteIdent(right.Name), quoteIdent(right.PrimaryKey.Name),
	)
}
