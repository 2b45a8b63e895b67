package graph

import "sort"

// MaximalCliques enumerates every maximal clique via Bron-Kerbosch with
// degeneracy ordering at the outer level and pivot selection at each
// recursive level, per the classic Eppstein/Löffler/Strash formulation
func MaximalCliques[V comparable](n Neighbors[V]) [][]V {
	order := degeneracyOrder(n)
	pos := make(map[V]int, len(order))
	for i, v := range order {
		pos[v] = i
	}

	var out [][]V
	for i, v := range order {
		// P = neighbors of v later in the order, X = neighbors earlier in the order
		p := make(map[V]struct{})
		x := make(map[V]struct{})
		for u := range n[v] {
			if pos[u] > i {
				p[u] = struct{}{}
			} else {
				x[u] = struct{}{}
			}
		}
		bronKerbosch(n, []V{v}, p, x, &out)
	}
	return out
}

// bronKerbosch recurses with pivoting: choose u ∈ X ∪ P (prefer X when non
// empty), branch only on v ∈ P \ N(u)
func bronKerbosch[V comparable](n Neighbors[V], r []V, p, x map[V]struct{}, out *[][]V) {
	if len(p) == 0 && len(x) == 0 {
		clique := make([]V, len(r))
		copy(clique, r)
		*out = append(*out, clique)
		return
	}

	pivot, ok := choosePivot(n, x, p)
	if !ok {
		pivot, _ = choosePivot(n, p, p)
	}
	pivotNeighbors := n[pivot]

	candidates := make([]V, 0, len(p))
	for v := range p {
		if _, adj := pivotNeighbors[v]; !adj {
			candidates = append(candidates, v)
		}
	}

	for _, v := range candidates {
		nv := n[v]
		newP := intersect(p, nv)
		newX := intersect(x, nv)

		delete(p, v)
		x[v] = struct{}{}

		bronKerbosch(n, append(r, v), newP, newX, out)
	}
}

// choosePivot returns any vertex from preferred if non empty, else from fallback
func choosePivot[V comparable](_ Neighbors[V], preferred, fallback map[V]struct{}) (V, bool) {
	for v := range preferred {
		return v, true
	}
	for v := range fallback {
		return v, true
	}
	var zero V
	return zero, false
}

func intersect[V comparable](a map[V]struct{}, b map[V]struct{}) map[V]struct{} {
	out := make(map[V]struct{})
	for v := range a {
		if _, ok := b[v]; ok {
			out[v] = struct{}{}
		}
	}
	return out
}

// degeneracyOrder repeatedly removes a vertex of minimum current degree and
// appends it to the order, giving the classic degeneracy ordering used to
// bound Bron-Kerbosch's outer loop
func degeneracyOrder[V comparable](n Neighbors[V]) []V {
	degree := make(map[V]int, len(n))
	for v, adj := range n {
		degree[v] = len(adj)
	}
	remaining := make(map[V]struct{}, len(n))
	for v := range n {
		remaining[v] = struct{}{}
	}

	order := make([]V, 0, len(n))
	for len(remaining) > 0 {
		var min V
		minDeg := -1
		// deterministic tie-break keeps output stable across runs for tests
		candidates := make([]V, 0, len(remaining))
		for v := range remaining {
			candidates = append(candidates, v)
		}
		sortStable(candidates)
		for _, v := range candidates {
			d := degree[v]
			if minDeg == -1 || d < minDeg {
				minDeg = d
				min = v
			}
		}
		order = append(order, min)
		delete(remaining, min)
		for u := range n[min] {
			if _, ok := remaining[u]; ok {
				degree[u]--
			}
		}
	}
	return order
}

// sortStable orders comparable vertices deterministically when possible;
// falls back to insertion order (map iteration) for types without a natural
// ordering hook
func sortStable[V comparable](vs []V) {
	sort.SliceStable(vs, func(i, j int) bool {
		return lessAny(vs[i], vs[j])
	})
}

func lessAny(a, b any) bool {
	switch av := a.(type) {
	case int:
		return av < b.(int)
	case int64:
		return av < b.(int64)
	case string:
		return av < b.(string)
	default:
		return false
	}
}

// EdgeDisjointCliqueCover greedily covers every edge with a maximal clique,
// largest first, repeatedly peeling degree-1 vertices as size-2 cliques
func EdgeDisjointCliqueCover[V comparable](n Neighbors[V]) [][]V {
	// work on a mutable copy so we can delete edges as they're covered
	work := NewNeighbors[V]()
	for v, adj := range n {
		for u := range adj {
			work.AddEdge(v, u)
		}
		work.AddVertex(v)
	}

	var cover [][]V
	for {
		removeIsolated(work)
		if peeled := peelDegreeOne(work, &cover); !peeled {
			if len(work) == 0 {
				break
			}
		}
		if len(work) == 0 {
			break
		}

		cliques := MaximalCliques(work)
		if len(cliques) == 0 {
			break
		}
		sort.SliceStable(cliques, func(i, j int) bool { return len(cliques[i]) > len(cliques[j]) })

		progressed := false
		for _, cl := range cliques {
			if len(cl) < 2 {
				continue
			}
			if !allEdgesPresent(work, cl) {
				continue
			}
			cover = append(cover, cl)
			removeCliqueEdges(work, cl)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return cover
}

func removeIsolated[V comparable](n Neighbors[V]) {
	for v, adj := range n {
		if len(adj) == 0 {
			delete(n, v)
		}
	}
}

// peelDegreeOne emits a size-2 clique for every degree-1 vertex and removes
// that edge; returns whether any peeling happened
func peelDegreeOne[V comparable](n Neighbors[V], cover *[][]V) bool {
	progressed := false
	for {
		var v V
		found := false
		for cand, adj := range n {
			if len(adj) == 1 {
				v = cand
				found = true
				break
			}
		}
		if !found {
			return progressed
		}
		var u V
		for nb := range n[v] {
			u = nb
		}
		*cover = append(*cover, []V{v, u})
		delete(n[v], u)
		delete(n[u], v)
		if len(n[v]) == 0 {
			delete(n, v)
		}
		if len(n[u]) == 0 {
			delete(n, u)
		}
		progressed = true
	}
}

func allEdgesPresent[V comparable](n Neighbors[V], clique []V) bool {
	for i := range clique {
		for j := i + 1; j < len(clique); j++ {
			if _, ok := n[clique[i]][clique[j]]; !ok {
				return false
			}
		}
	}
	return true
}

func removeCliqueEdges[V comparable](n Neighbors[V], clique []V) {
	for i := range clique {
		for j := i + 1; j < len(clique); j++ {
			a, b := clique[i], clique[j]
			delete(n[a], b)
			delete(n[b], a)
		}
	}
}
