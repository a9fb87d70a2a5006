package migrate

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cloesce/core/cidl"
)

// dropTables emits a DROP TABLE IF EXISTS for every junction table and
// table belonging to sortedLmModels, in reverse dependency order
// (dependents before their dependencies). Grounded on
// `MigrateTables::drop`.
func dropTables(sortedLmModels []cidl.Model) []string {
	var res []string

	for i := len(sortedLmModels) - 1; i >= 0; i-- {
		model := sortedLmModels[i]

		for _, nav := range model.NavigationProps {
			if nav.NavKind.Kind != cidl.ManyToMany {
				continue
			}
			id := nav.ManyToManyTableName(model.Name)
			res = append(res, fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(id)))
			logrus.Infof("dropped a many to many table %q", id)
		}

		res = append(res, fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(model.Name)))
		logrus.Infof("dropped a table %q", model.Name)
	}

	return res
}
