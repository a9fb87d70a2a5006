package migrate

import (
	"fmt"
	"strings"

	"github.com/cloesce/core/cidl"
)

// Migrate produces the SQL script that carries lmAst's schema forward to
// ast's. A nil lmAst means no prior migration exists: every D1 model is
// freshly created, and the `_cloesce_tmp` bootstrap table used for
// upsert id-threading (§9) is created alongside it. Grounded on
// `MigrationsGenerator::migrate`.
func Migrate(ast, lmAst *cidl.MigrationsAst, intent Intent) string {
	if lmAst != nil && lmAst.Hash == ast.Hash {
		return ""
	}

	tables := makeMigrations(ast, lmAst, intent)

	if lmAst == nil {
		tmp := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (\n  %s PRIMARY KEY,\n  %s NOT NULL\n);",
			quoteIdent("_cloesce_tmp"),
			typedColumnDDL("path", cidl.TText(), false),
			typedColumnDDL("id", cidl.TInteger(), false),
		)
		return beautify(tables + "\n--- Cloesce Temporary Table\n" + tmp)
	}

	return beautify(tables)
}

type migrationSection struct {
	title string
	stmts []string
}

// makeMigrations partitions ast's models against lmAst's into creates,
// alters, and drops, reconciles drop/create pairs that might be renames
// via intent, and renders the three sections. Grounded on
// `MigrateTables::make_migrations`.
func makeMigrations(ast, lmAst *cidl.MigrationsAst, intent Intent) string {
	lmModels := cidl.NewOrderedMap[cidl.Model]()
	if lmAst != nil {
		lmModels = lmAst.Models
	}

	modelIndex := make(map[string]int, ast.Models.Len())
	i := 0
	for p := ast.Models.Oldest(); p != nil; p = p.Next() {
		modelIndex[p.Key] = i
		i++
	}

	var creates []cidl.Model
	createM2Ms := map[string]junctionPair{}
	var alters [][2]cidl.Model
	var drops []cidl.Model

	for p := ast.Models.Oldest(); p != nil; p = p.Next() {
		model := p.Value

		if lmModel, ok := lmModels.Get(model.Name); ok {
			if lmModel.Hash != model.Hash {
				alters = append(alters, [2]cidl.Model{model, lmModel})
			}
			continue
		}

		for _, nav := range model.NavigationProps {
			if nav.NavKind.Kind != cidl.ManyToMany {
				continue
			}
			id := nav.ManyToManyTableName(model.Name)
			jctModel, _ := ast.Models.Get(nav.ModelReference)
			if model.Name < jctModel.Name {
				createM2Ms[id] = junctionPair{left: model, right: jctModel}
			} else {
				createM2Ms[id] = junctionPair{left: jctModel, right: model}
			}
		}

		creates = append(creates, model)
	}

	for p := lmModels.Oldest(); p != nil; p = p.Next() {
		if _, ok := ast.Models.Get(p.Key); !ok {
			drops = append(drops, p.Value)
		}
	}

	if len(drops) > 0 && len(creates) > 0 {
		var remaining []cidl.Model

		for _, lmModel := range drops {
			createNames := make([]string, len(creates))
			for i, c := range creates {
				createNames[i] = c.Name
			}

			idx := intent.Ask(Dilemma{ModelName: lmModel.Name, Options: createNames})
			if idx == nil {
				remaining = append(remaining, lmModel)
				continue
			}

			chosen := creates[*idx]
			creates = append(creates[:*idx], creates[*idx+1:]...)

			// Topological order must be preserved in the alters list.
			chosenIdx := modelIndex[chosen.Name]
			insertAt := len(alters)
			for j, pair := range alters {
				if modelIndex[pair[0].Name] > chosenIdx {
					insertAt = j
					break
				}
			}
			alters = append(alters, [2]cidl.Model{})
			copy(alters[insertAt+1:], alters[insertAt:])
			alters[insertAt] = [2]cidl.Model{chosen, lmModel}
		}

		drops = remaining
	}

	sections := []migrationSection{
		{"Dropped Models", dropTables(drops)},
		{"New Models", createTables(creates, ast.Models, createM2Ms)},
		{"Altered Models", alterTables(alters, ast.Models, intent)},
	}

	var b strings.Builder
	for _, s := range sections {
		if len(s.stmts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "--- %s\n", s.title)
		b.WriteString(strings.Join(s.stmts, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
