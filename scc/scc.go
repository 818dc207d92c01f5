// Package scc condenses a directed graph into its strongly-connected
// components, producing a DAG of components. It is deliberately generic
// over the node key type so both the resolver's int-keyed public graph and
// the installer's string-keyed on-disk graph can share one implementation.
package scc

import "sort"

// Component is a single strongly-connected component: the set of original
// node keys it contains, and the ids of the components it depends on
// (self-loops excluded).
type Component[K comparable] struct {
	Keys         []K
	Dependencies []int
}

// Result is the condensation of a graph into components.
type Result[K comparable] struct {
	Components     map[int]Component[K]
	RootComponents []int
}

// Condense computes the strongly-connected components of the graph
// described by nodes and edges (forward adjacency, source -> targets), via
// Tarjan's algorithm. A component is a root if isRoot reports true for any
// of its member keys.
func Condense[K comparable](nodes []K, edges map[K][]K, isRoot func(K) bool) Result[K] {
	t := &tarjan[K]{
		edges: edges,
		index: make(map[K]int, len(nodes)),
		low:   make(map[K]int, len(nodes)),
		onStk: make(map[K]bool, len(nodes)),
	}

	for _, n := range nodes {
		if _, seen := t.index[n]; !seen {
			t.strongConnect(n)
		}
	}

	compOf := make(map[K]int, len(nodes))
	for compID, keys := range t.comps {
		for _, k := range keys {
			compOf[k] = compID
		}
	}

	components := make(map[int]Component[K], len(t.comps))
	for compID, keys := range t.comps {
		depSet := make(map[int]struct{})
		for _, k := range keys {
			for _, target := range edges[k] {
				tc := compOf[target]
				if tc == compID {
					continue
				}
				depSet[tc] = struct{}{}
			}
		}
		deps := make([]int, 0, len(depSet))
		for d := range depSet {
			deps = append(deps, d)
		}
		sort.Ints(deps)
		components[compID] = Component[K]{Keys: keys, Dependencies: deps}
	}

	var roots []int
	for compID, c := range components {
		for _, k := range c.Keys {
			if isRoot(k) {
				roots = append(roots, compID)
				break
			}
		}
	}
	sort.Ints(roots)

	return Result[K]{Components: components, RootComponents: roots}
}

// tarjan holds the running state of Tarjan's strongly-connected-components
// algorithm, implemented iteratively to avoid recursion-depth limits on
// large graphs.
type tarjan[K comparable] struct {
	edges map[K][]K

	counter int
	index   map[K]int
	low     map[K]int
	onStk   map[K]bool
	stack   []K

	comps [][]K
}

type frame[K comparable] struct {
	node     K
	children []K
	pos      int
}

func (t *tarjan[K]) strongConnect(start K) {
	var work []*frame[K]
	t.push(start)
	work = append(work, &frame[K]{node: start, children: t.edges[start]})

	for len(work) > 0 {
		f := work[len(work)-1]

		if f.pos < len(f.children) {
			w := f.children[f.pos]
			f.pos++
			if _, seen := t.index[w]; !seen {
				t.push(w)
				work = append(work, &frame[K]{node: w, children: t.edges[w]})
				continue
			}
			if t.onStk[w] {
				if t.index[w] < t.low[f.node] {
					t.low[f.node] = t.index[w]
				}
			}
			continue
		}

		// All children processed; pop and finalize.
		work = work[:len(work)-1]
		if len(work) > 0 {
			parent := work[len(work)-1]
			if t.low[f.node] < t.low[parent.node] {
				t.low[parent.node] = t.low[f.node]
			}
		}

		if t.low[f.node] == t.index[f.node] {
			var comp []K
			for {
				n := t.stack[len(t.stack)-1]
				t.stack = t.stack[:len(t.stack)-1]
				t.onStk[n] = false
				comp = append(comp, n)
				if n == f.node {
					break
				}
			}
			t.comps = append(t.comps, comp)
		}
	}
}

func (t *tarjan[K]) push(n K) {
	t.index[n] = t.counter
	t.low[n] = t.counter
	t.counter++
	t.stack = append(t.stack, n)
	t.onStk[n] = true
}
