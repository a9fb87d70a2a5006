package query

import (
	"fmt"
	"strings"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// jsonField is one (key, value-expression) pair destined for a
// json_object(...) argument list.
type jsonField struct {
	key  string
	expr string
}

// jsonBuilder accumulates the scalar/object/array fields of a single
// model's json_object(...) projection during the DFS walk. Grounded on
// orm/src/methods/json.rs's JsonQueryBuilder.
type jsonBuilder struct {
	fields []jsonField
}

func (jb *jsonBuilder) scalar(name, expr string) {
	jb.fields = append(jb.fields, jsonField{key: name, expr: expr})
}

// build renders json_object('k1', v1, 'k2', v2, ...) for the accumulated
// fields, in the order they were added (primary key, then columns, then
// navigation properties).
func (jb *jsonBuilder) build() string {
	args := make([]string, 0, len(jb.fields)*2)
	for _, f := range jb.fields {
		args = append(args, fmt.Sprintf("'%s'", f.key), f.expr)
	}
	return fmt.Sprintf("json_object(%s)", strings.Join(args, ", "))
}

// AsJSON renders the scalar expression that projects modelName (and, per
// includeTree, its related models) as a JSON object, aggregated into a
// JSON array: `json_group_array(json_object(...))`. Blob columns are
// hex-encoded since raw bytes can't round-trip through JSON text.
// Grounded on `select_as_json`.
func AsJSON(modelName string, includeTree *cidl.IncludeTree, meta ModelMeta) (string, error) {
	model, ok := meta[modelName]
	if !ok {
		return "", cerr.ErrUnknownModel.New(modelName)
	}

	if includeTree == nil {
		includeTree = cidl.NewIncludeTree()
	}

	inner, err := jsonDFS(model, includeTree, meta)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("json_group_array(%s)", inner), nil
}

func jsonDFS(model cidl.Model, tree *cidl.IncludeTree, meta ModelMeta) (string, error) {
	if model.PrimaryKey == nil {
		return "", cerr.ErrModelMissingD1.New(fmt.Sprintf("model '%s' is not a D1 model.", model.Name))
	}

	jb := &jsonBuilder{}
	jb.scalar(model.PrimaryKey.Name, scalarExpr(model.Name, *model.PrimaryKey))
	for _, col := range model.Columns {
		jb.scalar(col.Value.Name, scalarExpr(model.Name, col.Value))
	}

	for _, nav := range model.NavigationProps {
		childTree, ok := tree.Get(nav.VarName)
		if !ok {
			continue
		}
		related, ok := meta[nav.ModelReference]
		if !ok {
			continue
		}

		inner, err := jsonDFS(related, childTree, meta)
		if err != nil {
			return "", err
		}

		switch nav.NavKind.Kind {
		case cidl.OneToOne:
			where := fmt.Sprintf("%s = %s", qualify(related.Name, related.PrimaryKey.Name), qualify(model.Name, nav.NavKind.ColumnReference))
			sub := fmt.Sprintf("(SELECT %s FROM %s WHERE %s)", inner, quoteIdent(related.Name), where)
			jb.scalar(nav.VarName, fmt.Sprintf("COALESCE%s", parenCoalesce(sub, "'{}'")))

		case cidl.OneToMany:
			where := fmt.Sprintf("%s = %s", qualify(related.Name, nav.NavKind.ColumnReference), qualify(model.Name, model.PrimaryKey.Name))
			sub := fmt.Sprintf("(SELECT json_group_array(%s) FROM %s WHERE %s)", inner, quoteIdent(related.Name), where)
			jb.scalar(nav.VarName, fmt.Sprintf("COALESCE%s", parenCoalesce(sub, "'[]'")))

		case cidl.ManyToMany:
			m2mTable := nav.ManyToManyTableName(model.Name)
			parentSide, relatedSide := "left", "right"
			if model.Name >= related.Name {
				parentSide, relatedSide = "right", "left"
			}

			where := fmt.Sprintf("%s = %s", qualify(m2mTable, parentSide), qualify(model.Name, model.PrimaryKey.Name))
			join := fmt.Sprintf("JOIN %s ON %s = %s", quoteIdent(m2mTable),
				qualify(m2mTable, relatedSide), qualify(related.Name, related.PrimaryKey.Name))
			sub := fmt.Sprintf("(SELECT json_group_array(%s) FROM %s %s WHERE %s)", inner, quoteIdent(related.Name), join, where)
			jb.scalar(nav.VarName, fmt.Sprintf("COALESCE%s", parenCoalesce(sub, "'[]'")))
		}
	}

	return jb.build(), nil
}

func parenCoalesce(sub, fallback string) string {
	return fmt.Sprintf("(%s, %s)", sub, fallback)
}

func scalarExpr(tableAlias string, col cidl.NamedTypedValue) string {
	q := qualify(tableAlias, col.Name)
	if col.Type.RootType().Kind == cidl.Blob {
		return fmt.Sprintf("hex(%s)", q)
	}
	return q
}
