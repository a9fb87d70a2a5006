package semantic

import (
	"sort"
	"strings"

	"github.com/cloesce/core/cerr"
)

// kahn runs Kahn's algorithm over graph (name -> dependents) with the
// given in-degree map, assigning each node a rank in dequeue order. If
// fewer than expected nodes are ranked, the remaining positive-in-degree
// nodes are cyclic and reported together (§4.2.1). Reused for POO
// ordering, D1 model ordering, and service ordering, as in the original.
func kahn(graph map[string][]string, inDegree map[string]int, expected int) (map[string]int, error) {
	// Deterministic seed order keeps output stable across runs for equal
	// in-degree nodes, matching the BTreeMap-backed iteration the
	// original relies on.
	names := make([]string, 0, len(inDegree))
	for n := range inDegree {
		names = append(names, n)
	}
	sort.Strings(names)

	queue := make([]string, 0, len(names))
	for _, n := range names {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	degree := make(map[string]int, len(inDegree))
	for k, v := range inDegree {
		degree[k] = v
	}

	rank := make(map[string]int, expected)
	counter := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		rank[name] = counter
		counter++

		adjs := append([]string(nil), graph[name]...)
		sort.Strings(adjs)
		for _, adj := range adjs {
			degree[adj]--
			if degree[adj] == 0 {
				queue = append(queue, adj)
			}
		}
	}

	if len(rank) != expected {
		var cyclic []string
		for n, d := range degree {
			if d > 0 {
				cyclic = append(cyclic, n)
			}
		}
		sort.Strings(cyclic)
		return nil, cerr.ErrCyclicalDependency.New(strings.Join(cyclic, ", "))
	}

	return rank, nil
}
