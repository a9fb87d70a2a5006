package semantic

import (
	"fmt"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// validateServices validates every service's methods and topologically
// orders the services by their inject-attribute dependency graph, so a
// service is never constructed before the services its initializer
// depends on. Grounded on the `services` fn.
func validateServices(ast *cidl.CloesceAst) error {
	graph := make(map[string][]string, ast.Services.Len())
	inDegree := make(map[string]int, ast.Services.Len())

	for p := ast.Services.Oldest(); p != nil; p = p.Next() {
		graph[p.Key] = nil
		inDegree[p.Key] = 0
	}

	for p := ast.Services.Oldest(); p != nil; p = p.Next() {
		svc := p.Value

		if p.Key != svc.Name {
			return cerr.ErrInvalidMapping.New(fmt.Sprintf("services[%s] has name %s", p.Key, svc.Name))
		}

		for _, attr := range svc.Attributes {
			if _, ok := ast.Services.Get(attr.InjectReference); !ok {
				continue
			}
			graph[attr.InjectReference] = append(graph[attr.InjectReference], svc.Name)
			inDegree[svc.Name]++
		}

		for m := svc.Methods.Oldest(); m != nil; m = m.Next() {
			if err := validateMethod(svc.Name, m.Key, m.Value, ast); err != nil {
				return err
			}
		}
	}

	rank, err := kahn(graph, inDegree, ast.Services.Len())
	if err != nil {
		return err
	}

	ast.Services = cidl.ReorderByRank(ast.Services, rank)
	return nil
}
