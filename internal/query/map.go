package query

import (
	"fmt"
	"strings"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// Row is a single flat result row keyed by the dotted aliases SelectModel
// assigns (e.g. "id", "profile.bio"). database/sql scan targets decode
// into this shape before MapRows folds them back into a tree.
type Row map[string]any

// Object is an insertion-ordered JSON object, matching the ordering
// serde_json::Map (with its preserve_order feature) gives the original's
// mapped results. Grounded on cidl's own OrderedMap-backed JSON rendering.
type Object struct {
	*cidl.OrderedMap[any]
}

func newObject() Object {
	return Object{cidl.NewOrderedMap[any]()}
}

// MarshalJSON renders the object's fields in insertion order rather than
// the key-sorted order a plain map[string]any would produce.
func (o Object) MarshalJSON() ([]byte, error) {
	return cidl.MarshalOrderedMap(o.OrderedMap)
}

// MapRows folds modelName's flat, dotted-path rows (as SelectModel would
// produce them) back into a tree of nested JSON objects, one per distinct
// primary key value. Grounded on orm/src/methods/map.rs's `map_sql` /
// `process_navigation_properties`.
func MapRows(modelName string, rows []Row, includeTree *cidl.IncludeTree, meta ModelMeta) ([]Object, error) {
	model, ok := meta[modelName]
	if !ok {
		return nil, cerr.ErrUnknownModel.New(modelName)
	}
	if model.PrimaryKey == nil {
		return nil, cerr.ErrModelMissingD1.New(fmt.Sprintf("model %s is not a D1 model", modelName))
	}

	pkName := model.PrimaryKey.Name
	order := make([]string, 0, len(rows))
	byKey := make(map[string]Object, len(rows))

	for _, row := range rows {
		pkValue, ok := row[pkName]
		if !ok {
			continue
		}
		key := fmt.Sprintf("%v", pkValue)

		obj, exists := byKey[key]
		if !exists {
			obj = newObject()
			obj.Set(pkName, pkValue)

			for _, col := range model.Columns {
				if v, ok := row[col.Value.Name]; ok {
					obj.Set(col.Value.Name, v)
				}
			}

			for _, nav := range model.NavigationProps {
				if isCollectionNav(nav) {
					obj.Set(nav.VarName, []any{})
				}
			}

			byKey[key] = obj
			order = append(order, key)
		}

		if includeTree == nil {
			continue
		}
		if err := mapNavigationProps(obj, model, "", includeTree, row, meta); err != nil {
			return nil, err
		}
	}

	result := make([]Object, 0, len(order))
	for _, k := range order {
		result = append(result, byKey[k])
	}
	return result, nil
}

func isCollectionNav(nav cidl.NavigationProperty) bool {
	return nav.NavKind.Kind == cidl.OneToMany || nav.NavKind.Kind == cidl.ManyToMany
}

func joinDotted(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

func mapNavigationProps(obj Object, model cidl.Model, prefix string, tree *cidl.IncludeTree, row Row, meta ModelMeta) error {
	for _, nav := range model.NavigationProps {
		childTree, ok := tree.Get(nav.VarName)
		if !ok {
			continue
		}

		related, ok := meta[nav.ModelReference]
		if !ok {
			return cerr.ErrUnknownModel.New(nav.ModelReference)
		}
		nestedPKName := related.PrimaryKey.Name

		nestedPKValue, ok := row[joinDotted(prefix, nav.VarName, nestedPKName)]
		if !ok || nestedPKValue == nil {
			continue
		}

		nested := newObject()
		nested.Set(nestedPKName, nestedPKValue)

		for _, col := range related.Columns {
			if v, ok := row[joinDotted(prefix, nav.VarName, col.Value.Name)]; ok {
				nested.Set(col.Value.Name, v)
			} else if v, ok := row[joinDotted(nav.VarName, col.Value.Name)]; ok {
				nested.Set(col.Value.Name, v)
			}
		}

		for _, nn := range related.NavigationProps {
			if isCollectionNav(nn) {
				nested.Set(nn.VarName, []any{})
			}
		}

		childPrefix := joinDotted(prefix, nav.VarName)
		if err := mapNavigationProps(nested, related, childPrefix, childTree, row, meta); err != nil {
			return err
		}

		if isCollectionNav(nav) {
			existing, _ := obj.Get(nav.VarName)
			slice, _ := existing.([]any)

			found := false
			for _, e := range slice {
				if eo, ok := e.(Object); ok {
					if v, ok := eo.Get(nestedPKName); ok && v == nestedPKValue {
						found = true
						break
					}
				}
			}
			if !found {
				slice = append(slice, nested)
			}
			obj.Set(nav.VarName, slice)
		} else {
			obj.Set(nav.VarName, nested)
		}
	}
	return nil
}
