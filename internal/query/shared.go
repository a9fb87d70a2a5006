// Package query synthesizes the SQL that materializes a model (and the
// navigation properties an include tree selects), including its upsert
// and JSON-aggregated forms. Grounded on original_source/src/orm/src/methods.
package query

import (
	"fmt"
	"strings"

	"github.com/cloesce/core/cidl"
)

// ModelMeta is the model-name lookup the synthesizer walks against: the
// analyzed, migrated AST's D1-backed models.
type ModelMeta map[string]cidl.Model

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func qualify(tableAlias, column string) string {
	return fmt.Sprintf("%s.%s", quoteIdent(tableAlias), quoteIdent(column))
}

// gensym produces a unique per-query table alias, avoiding ambiguous
// self-joins when a model references itself (directly or through a
// cycle of navigation properties). Grounded on SelectModel::gensym.
type gensym struct{ counter int }

func (g *gensym) next(name string) string {
	g.counter++
	return fmt.Sprintf("%s_%d", name, g.counter)
}
