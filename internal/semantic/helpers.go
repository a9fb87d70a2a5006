package semantic

import (
	"fmt"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// extractBraced pulls every {token} out of a key format string, e.g.
// "users/{userId}/posts/{postId}" -> ["userId", "postId"]. Nested or
// unbalanced braces are rejected.
func extractBraced(s string) ([]string, error) {
	var out []string
	var current *[]rune

	for _, c := range s {
		switch {
		case current == nil && c == '{':
			buf := []rune{}
			current = &buf
		case current != nil && c == '{':
			return nil, cerr.ErrInvalidKeyFormat.New("nested brace in key: " + s)
		case current == nil && c == '}':
			return nil, cerr.ErrInvalidKeyFormat.New("unmatched closing brace in key: " + s)
		case current != nil && c == '}':
			out = append(out, string(*current))
			current = nil
		case current != nil:
			*current = append(*current, c)
		}
	}

	if current != nil {
		return nil, cerr.ErrInvalidKeyFormat.New("unclosed brace in key: " + s)
	}
	return out, nil
}

func isValidObjectRef(ast *cidl.CloesceAst, name string) bool {
	if _, ok := ast.Models.Get(name); ok {
		return true
	}
	_, ok := ast.Poos.Get(name)
	return ok
}

func isValidDataSourceRef(ast *cidl.CloesceAst, name string) bool {
	_, ok := ast.Models.Get(name)
	return ok
}

// ensureValidSQLType validates that value's root type (after stripping a
// single Nullable layer) is one of the scalar SQL-mappable types.
func ensureValidSQLType(modelName string, value cidl.NamedTypedValue) error {
	inner := value.Type
	if inner.Kind == cidl.Nullable {
		if inner.Of.Kind == cidl.Void {
			return cerr.ErrNullSqlType.New(fmt.Sprintf("%s.%s", modelName, value.Name))
		}
		inner = *inner.Of
	}

	if !cidl.IsSQLRoot(inner) {
		return cerr.ErrInvalidSqlType.New(fmt.Sprintf("%s.%s", modelName, value.Name))
	}
	return nil
}

// validIncludeTreeReference resolves a var name on model to either the
// navigation property it follows (returning the referenced model name) or
// a terminal KV/R2 artifact (returning isNav=false with a nil error).
func validIncludeTreeReference(model cidl.Model, varName string) (modelName string, isNav bool, err error) {
	if nav, ok := model.FindNav(varName); ok {
		return nav.ModelReference, true, nil
	}
	for _, kv := range model.KVObjects {
		if kv.Value.Name == varName {
			return "", false, nil
		}
	}
	for _, r2 := range model.R2Objects {
		if r2.VarName == varName {
			return "", false, nil
		}
	}
	return "", false, cerr.ErrUnknownIncludeTreeReference.New(fmt.Sprintf("%s.%s", model.Name, varName))
}
