package migrate

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cloesce/core/cidl"
)

type alterKindTag int

const (
	akRenameTable alterKindTag = iota
	akRebuildTable
	akAddColumn
	akAlterColumnType
	akDropColumn
	akAddManyToMany
	akDropManyToMany
)

// alterKind is one atomic change identifyAlterations detects between a
// model and its last-migrated counterpart. Grounded on `AlterKind`.
type alterKind struct {
	tag          alterKindTag
	col, lmCol   *cidl.D1Column
	m2mTableName string
	modelName    string
}

// renamedPair tracks (oldName, newName) model renames observed so far,
// so a dependent FK column that only changed because its referent was
// renamed doesn't trigger a needless rebuild.
type renamedPair struct{ from, to string }

// alterTables emits the alter-statement sequence for every (model,
// lmModel) pair in alterModels, posing a RenameOrDropColumn dilemma when
// a dropped column might actually be a rename. Grounded on
// `MigrateTables::alter`.
func alterTables(alterModels [][2]cidl.Model, modelLookup *cidl.OrderedMap[cidl.Model], intent Intent) []string {
	const (
		pragmaFKOff   = "PRAGMA foreign_keys = OFF;"
		pragmaFKOn    = "PRAGMA foreign_keys = ON;"
		pragmaFKCheck = "PRAGMA foreign_key_check;"
	)

	var res []string
	visitedM2Ms := map[string]bool{}
	var renamed []renamedPair

	for _, pair := range alterModels {
		model, lmModel := pair[0], pair[1]

		needsRenameIntent := map[string]*cidl.D1Column{}
		var needsDropIntent []*cidl.D1Column

		for _, kind := range identifyAlterations(model, lmModel, renamed) {
			switch kind.tag {
			case akRenameTable:
				res = append(res, fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", quoteIdent(lmModel.Name), quoteIdent(model.Name)))

				if model.PrimaryKey.Name == lmModel.PrimaryKey.Name && cidl.TypesEqual(model.PrimaryKey.Type, lmModel.PrimaryKey.Type) {
					renamed = append(renamed, renamedPair{lmModel.Name, model.Name})
				}
				logrus.Infof("renamed table %q to %q", lmModel.Name, model.Name)

			case akAddColumn:
				needsRenameIntent[kind.col.Value.Name] = kind.col

			case akAlterColumnType:
				res = append(res, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", quoteIdent(model.Name), quoteIdent(kind.lmCol.Value.Name)))
				res = append(res, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", quoteIdent(model.Name), typedColumnDDL(kind.col.Value.Name, kind.col.Value.Type, true)))
				logrus.Infof("altered column type of %q.%v to %v", lmModel.Name, kind.lmCol.Value.Type, kind.col.Value.Type)
				logrus.Warn("altering column types drops the previous column. Data can be lost.")

			case akDropColumn:
				needsDropIntent = append(needsDropIntent, kind.lmCol)

			case akAddManyToMany:
				if visitedM2Ms[kind.m2mTableName] {
					continue
				}
				visitedM2Ms[kind.m2mTableName] = true

				join, _ := modelLookup.Get(kind.modelName)
				pair := junctionPair{left: model, right: join}
				if join.Name < model.Name {
					pair = junctionPair{left: join, right: model}
				}
				jcts := map[string]junctionPair{kind.m2mTableName: pair}
				res = append(res, createTables(nil, modelLookup, jcts)...)
				logrus.Warnf("created a many to many table %q between models: %q %q", kind.m2mTableName, model.Name, join.Name)

			case akDropManyToMany:
				if visitedM2Ms[kind.m2mTableName] {
					continue
				}
				visitedM2Ms[kind.m2mTableName] = true

				res = append(res, fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(kind.m2mTableName)))
				logrus.Infof("dropped a many to many table %q", kind.m2mTableName)

			case akRebuildTable:
				res = append(res, rebuildTable(model, lmModel, modelLookup, pragmaFKOff, pragmaFKOn, pragmaFKCheck)...)
			}
		}

		for _, lmCol := range needsDropIntent {
			var renameOptions []string
			for _, addCol := range needsRenameIntent {
				if cidl.TypesEqual(addCol.Value.Type, lmCol.Value.Type) {
					renameOptions = append(renameOptions, addCol.Value.Name)
				}
			}

			if len(renameOptions) > 0 {
				idx := intent.Ask(Dilemma{ModelName: model.Name, ColumnName: lmCol.Value.Name, Options: renameOptions})
				if idx != nil {
					option := renameOptions[*idx]
					res = append(res, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", quoteIdent(model.Name), quoteIdent(lmCol.Value.Name), quoteIdent(option)))
					delete(needsRenameIntent, option)
					logrus.Infof("renamed a column %q.%q to %q.%q", lmModel.Name, lmCol.Value.Name, model.Name, option)
					continue
				}
			}

			res = append(res, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", quoteIdent(model.Name), quoteIdent(lmCol.Value.Name)))
			logrus.Infof("dropped a column %q.%q", model.Name, lmCol.Value.Name)
		}

		for _, addCol := range needsRenameIntent {
			res = append(res, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", quoteIdent(model.Name), typedColumnDDL(addCol.Value.Name, addCol.Value.Type, true)))
			logrus.Infof("added a column %q.%q", model.Name, addCol.Value.Name)
		}
	}

	return res
}

// identifyAlterations classifies the difference between model and
// lmModel into a sequence of atomic alterations. A primary key change
// forces a full RebuildTable, since SQLite cannot alter a PK in place.
// Grounded on the nested `identify_alterations` fn.
func identifyAlterations(model, lmModel cidl.Model, renamed []renamedPair) []alterKind {
	var alterations []alterKind

	if model.Name != lmModel.Name {
		alterations = append(alterations, alterKind{tag: akRenameTable})
	}

	if !cidl.TypesEqual(model.PrimaryKey.Type, lmModel.PrimaryKey.Type) || model.PrimaryKey.Name != lmModel.PrimaryKey.Name {
		return []alterKind{{tag: akRebuildTable}}
	}

	wasRenamed := func(from, to string) bool {
		for _, r := range renamed {
			if r.from == from && r.to == to {
				return true
			}
		}
		return false
	}

	lmCols := make(map[string]cidl.D1Column, len(lmModel.Columns))
	for _, c := range lmModel.Columns {
		lmCols[c.Value.Name] = c
	}

	for i := range model.Columns {
		col := model.Columns[i]
		lmCol, ok := lmCols[col.Value.Name]
		if !ok {
			if col.ForeignKeyReference != nil {
				return []alterKind{{tag: akRebuildTable}}
			}
			alterations = append(alterations, alterKind{tag: akAddColumn, col: &model.Columns[i]})
			continue
		}
		delete(lmCols, col.Value.Name)

		if lmCol.Hash == col.Hash {
			continue
		}

		if col.ForeignKeyReference != nil && lmCol.ForeignKeyReference != nil &&
			wasRenamed(*lmCol.ForeignKeyReference, *col.ForeignKeyReference) &&
			cidl.TypesEqual(lmCol.Value.Type, col.Value.Type) {
			continue
		}

		if lmCol.ForeignKeyReference != nil || col.ForeignKeyReference != nil {
			return []alterKind{{tag: akRebuildTable}}
		}

		if !cidl.TypesEqual(lmCol.Value.Type, col.Value.Type) {
			lc := lmCol
			alterations = append(alterations, alterKind{tag: akAlterColumnType, col: &model.Columns[i], lmCol: &lc})
		}
	}

	for _, unvisited := range lmCols {
		if unvisited.ForeignKeyReference != nil {
			return []alterKind{{tag: akRebuildTable}}
		}
		lc := unvisited
		alterations = append(alterations, alterKind{tag: akDropColumn, lmCol: &lc})
	}

	lmM2Ms := map[string]bool{}
	for _, nav := range lmModel.NavigationProps {
		if nav.NavKind.Kind == cidl.ManyToMany {
			lmM2Ms[nav.ManyToManyTableName(lmModel.Name)] = true
		}
	}

	for _, nav := range model.NavigationProps {
		if nav.NavKind.Kind != cidl.ManyToMany {
			continue
		}
		id := nav.ManyToManyTableName(model.Name)
		if lmM2Ms[id] {
			delete(lmM2Ms, id)
			continue
		}
		alterations = append(alterations, alterKind{tag: akAddManyToMany, m2mTableName: id, modelName: nav.ModelReference})
	}

	for id := range lmM2Ms {
		alterations = append(alterations, alterKind{tag: akDropManyToMany, m2mTableName: id})
	}

	return alterations
}
