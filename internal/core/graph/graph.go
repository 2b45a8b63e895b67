// Package graph provides the generic graph algorithms the reconciliation
// passes run over: connected components and maximal-clique enumeration.
// Graphs are undirected, given as an adjacency set per vertex; self-loops
// are ignored everywhere
package graph

// Neighbors is an undirected adjacency view: v is never present in
// Neighbors[v], and u ∈ Neighbors[v] implies v ∈ Neighbors[u]
type Neighbors[V comparable] map[V]map[V]struct{}

// NewNeighbors builds an empty adjacency set
func NewNeighbors[V comparable]() Neighbors[V] { return make(Neighbors[V]) }

// AddEdge records both directions of an edge; self-loops are dropped
func (n Neighbors[V]) AddEdge(a, b V) {
	if a == b {
		return
	}
	n.ensure(a)[b] = struct{}{}
	n.ensure(b)[a] = struct{}{}
}

// AddVertex ensures v has an entry even if it ends up with no edges
func (n Neighbors[V]) AddVertex(v V) { n.ensure(v) }

func (n Neighbors[V]) ensure(v V) map[V]struct{} {
	s, ok := n[v]
	if !ok {
		s = make(map[V]struct{})
		n[v] = s
	}
	return s
}

// Vertices returns every vertex with at least one neighbor or an explicit entry
func (n Neighbors[V]) Vertices() []V {
	out := make([]V, 0, len(n))
	for v := range n {
		out = append(out, v)
	}
	return out
}

// Degree returns len(Neighbors[v]), zero for an unknown vertex
func (n Neighbors[V]) Degree(v V) int { return len(n[v]) }

// ConnectedComponents partitions the vertex set into maximal connected
// subsets using an explicit work-stack flood (no recursion, so it is safe on
// graphs too large for the call stack)
func ConnectedComponents[V comparable](n Neighbors[V]) []map[V]struct{} {
	visited := make(map[V]struct{}, len(n))
	var components []map[V]struct{}

	for start := range n {
		if _, ok := visited[start]; ok {
			continue
		}
		comp := map[V]struct{}{start: {}}
		visited[start] = struct{}{}
		stack := []V{start}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for u := range n[v] {
				if u == v {
					continue // ignore self-loops
				}
				if _, seen := visited[u]; seen {
					continue
				}
				visited[u] = struct{}{}
				comp[u] = struct{}{}
				stack = append(stack, u)
			}
		}
		components = append(components, comp)
	}
	return components
}
