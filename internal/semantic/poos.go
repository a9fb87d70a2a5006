package semantic

import (
	"fmt"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// validatePoos checks that every POO attribute referencing another POO
// (or model) resolves, then topologically orders the POOs so a POO is
// never emitted before the POOs it depends on. Grounded on
// original_source/src/generator/semantic/src/lib.rs's `poos` fn, which
// builds a dependency graph over Object-typed attributes and runs it
// through `kahns`.
func validatePoos(ast *cidl.CloesceAst) error {
	graph := make(map[string][]string, ast.Poos.Len())
	inDegree := make(map[string]int, ast.Poos.Len())

	for p := ast.Poos.Oldest(); p != nil; p = p.Next() {
		inDegree[p.Key] = 0
		graph[p.Key] = nil
	}

	for p := ast.Poos.Oldest(); p != nil; p = p.Next() {
		poo := p.Value

		if p.Key != poo.Name {
			return cerr.ErrInvalidMapping.New(fmt.Sprintf("poos[%s] has name %s", p.Key, poo.Name))
		}

		for _, attr := range poo.Attributes {
			root := attr.Type.RootType()
			switch root.Kind {
			case cidl.Void:
				return cerr.ErrUnexpectedVoid.New(fmt.Sprintf("%s.%s", poo.Name, attr.Name))
			case cidl.Inject:
				return cerr.ErrUnexpectedInject.New(fmt.Sprintf("%s.%s => %s?", poo.Name, attr.Name, root.Name))
			case cidl.Stream:
				return cerr.ErrInvalidStream.New(fmt.Sprintf("%s.%s", poo.Name, attr.Name))
			case cidl.DataSource:
				if !isValidDataSourceRef(ast, root.Name) {
					return cerr.ErrInvalidModelReference.New(fmt.Sprintf("%s.%s => %s?", poo.Name, attr.Name, root.Name))
				}
				continue
			case cidl.Object, cidl.Partial:
				// falls through to the shared object-reference handling below
			default:
				continue
			}

			if !isValidObjectRef(ast, root.Name) {
				return cerr.ErrUnknownObject.New(fmt.Sprintf("%s.%s => %s?", poo.Name, attr.Name, root.Name))
			}
			if _, ok := ast.Poos.Get(root.Name); !ok {
				// references a Model, not a POO: no ordering edge needed.
				continue
			}
			graph[root.Name] = append(graph[root.Name], poo.Name)
			inDegree[poo.Name]++
		}
	}

	rank, err := kahn(graph, inDegree, ast.Poos.Len())
	if err != nil {
		return err
	}

	ast.Poos = cidl.ReorderByRank(ast.Poos, rank)
	return nil
}
