// Package toposort orders schema messages so that every message is emitted
// after the messages it statically depends on, per §4.9.
package toposort

import (
	"fmt"
	"sort"

	"github.com/toba/staticpb/internal/options"
)

// ErrCycle is options.ErrCyclicDependency; Sort wraps it with the names of
// the nodes left unordered by the cycle.
var ErrCycle = options.ErrCyclicDependency

// Node is anything the sorter can order: a stable Name used for
// tie-breaking and diagnostics, plus the set of Names it statically
// depends on. A dependency edge an implementation has already decided to
// satisfy with a POINTER (forward-declared) rather than an embedded field
// must simply be omitted from Depends -- the pointer-breaks-cycle rule is
// enforced by callers building the graph, not by the sorter itself.
type Node struct {
	Name    string
	Depends []string
}

// Sort performs a deterministic topological sort, mirroring
// toposort2/sort_dependencies: Kahn's algorithm with the ready set
// resolved in lexicographic order at every step so that two independent
// runs over the same input, or the same input with its nodes permuted,
// always produce the same output order.
func Sort(nodes []Node) ([]string, error) {
	indexOf := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := indexOf[n.Name]; dup {
			return nil, fmt.Errorf("toposort: duplicate node %q", n.Name)
		}
		indexOf[n.Name] = i
	}

	inDegree := make([]int, len(nodes))
	dependents := make([][]int, len(nodes))
	for i, n := range nodes {
		for _, dep := range n.Depends {
			if dep == n.Name {
				continue // self-reference
			}
			j, ok := indexOf[dep]
			if !ok {
				continue // dependency outside this node set (e.g. external/forward-declared type)
			}
			inDegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i, d := range inDegree {
		if d == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]string, 0, len(nodes))
	remaining := len(nodes)
	for remaining > 0 {
		if len(ready) == 0 {
			return nil, cycleError(nodes, inDegree)
		}
		sort.Slice(ready, func(a, b int) bool { return nodes[ready[a]].Name < nodes[ready[b]].Name })
		next := ready[0]
		ready = ready[1:]

		order = append(order, nodes[next].Name)
		remaining--

		for _, dep := range dependents[next] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	return order, nil
}

func cycleError(nodes []Node, inDegree []int) error {
	var names []string
	for i, d := range inDegree {
		if d > 0 {
			names = append(names, nodes[i].Name)
		}
	}
	sort.Strings(names)
	return fmt.Errorf("%w: involving %v", ErrCycle, names)
}
