package query

import (
	"fmt"
	"strings"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// selectBuilder threads DFS state (current dotted path, alias gensym,
// accumulated projections/joins) across a recursive walk of an include
// tree. Grounded on orm/src/methods/select.rs's SelectModel.
type selectBuilder struct {
	meta  ModelMeta
	path  []string
	gen   gensym
	cols  []string
	joins []string
}

// SelectModel renders the hierarchical SELECT for modelName, following
// includeTree to decide which navigation properties to LEFT JOIN. Every
// projected column is aliased to its dotted include-tree path (§4.4.1),
// so a flat row can be folded back into a tree by MapRows. A non-empty
// from substitutes a caller-supplied subquery for the model's base
// table (the "custom FROM" escape hatch); unlike the original, no
// placeholder/replace round trip is needed since the FROM clause is
// assembled directly rather than through a fluent query builder.
func SelectModel(modelName string, from string, includeTree *cidl.IncludeTree, meta ModelMeta) (string, error) {
	model, ok := meta[modelName]
	if !ok {
		return "", cerr.ErrUnknownModel.New(modelName)
	}
	if model.PrimaryKey == nil {
		return "", cerr.ErrModelMissingD1.New(fmt.Sprintf("model '%s' is not a D1 model.", modelName))
	}

	if includeTree == nil {
		includeTree = cidl.NewIncludeTree()
	}

	sb := &selectBuilder{meta: meta}
	sb.dfs(model, includeTree, model.Name, "")

	fromClause := quoteIdent(model.Name)
	if from != "" {
		fromClause = fmt.Sprintf("(%s) AS %s", from, quoteIdent(model.Name))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(sb.cols, ", "))
	fmt.Fprintf(&b, " FROM %s", fromClause)
	for _, j := range sb.joins {
		b.WriteByte(' ')
		b.WriteString(j)
	}
	b.WriteByte(';')
	return b.String(), nil
}

func (sb *selectBuilder) joinPath(member string) string {
	if len(sb.path) == 0 {
		return member
	}
	return strings.Join(sb.path, ".") + "." + member
}

func (sb *selectBuilder) dfs(model cidl.Model, tree *cidl.IncludeTree, modelAlias string, m2mAlias string) {
	pk := model.PrimaryKey.Name

	// Primary key: a model reached through an M:M join exposes its id as
	// its own side's "left" or "right" column on the junction table rather
	// than as the model's own column.
	pkExpr := qualify(modelAlias, pk)
	if m2mAlias != "" {
		side := "left"
		if model.Name >= strings.TrimRight(m2mAlias, "_") {
			side = "right"
		}
		pkExpr = qualify(m2mAlias, side)
	}
	sb.cols = append(sb.cols, fmt.Sprintf("%s AS %s", pkExpr, quoteIdent(sb.joinPath(pk))))

	for _, col := range model.Columns {
		sb.cols = append(sb.cols, fmt.Sprintf("%s AS %s", qualify(modelAlias, col.Value.Name), quoteIdent(sb.joinPath(col.Value.Name))))
	}

	for _, nav := range model.NavigationProps {
		childTree, ok := tree.Get(nav.VarName)
		if !ok {
			continue
		}
		child, ok := sb.meta[nav.ModelReference]
		if !ok {
			continue
		}

		childAlias := sb.gen.next(child.Name)
		childM2MAlias := ""

		switch nav.NavKind.Kind {
		case cidl.OneToOne:
			sb.leftJoin(child.Name, childAlias, fmt.Sprintf("%s = %s",
				qualify(modelAlias, nav.NavKind.ColumnReference), qualify(childAlias, child.PrimaryKey.Name)))

		case cidl.OneToMany:
			sb.leftJoin(child.Name, childAlias, fmt.Sprintf("%s = %s",
				qualify(modelAlias, pk), qualify(childAlias, nav.NavKind.ColumnReference)))

		case cidl.ManyToMany:
			m2mTable := nav.ManyToManyTableName(model.Name)
			m2mAliasName := sb.gen.next(m2mTable)

			a, b := "left", "right"
			if model.Name >= nav.ModelReference {
				a, b = "right", "left"
			}

			sb.leftJoin(m2mTable, m2mAliasName, fmt.Sprintf("%s = %s", qualify(modelAlias, pk), qualify(m2mAliasName, a)))
			sb.leftJoin(child.Name, childAlias, fmt.Sprintf("%s = %s", qualify(m2mAliasName, b), qualify(childAlias, child.PrimaryKey.Name)))

			childM2MAlias = m2mAliasName
		}

		sb.path = append(sb.path, nav.VarName)
		sb.dfs(child, childTree, childAlias, childM2MAlias)
		sb.path = sb.path[:len(sb.path)-1]
	}
}

func (sb *selectBuilder) leftJoin(tableName, aliasName, on string) {
	sb.joins = append(sb.joins, fmt.Sprintf("LEFT JOIN %s AS %s ON %s", quoteIdent(tableName), quoteIdent(aliasName), on))
}
