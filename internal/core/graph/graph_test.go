package graph

import (
	"sort"
	"testing"
)

func setOf(vs ...int) map[int]struct{} {
	s := map[int]struct{}{}
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

func TestConnectedComponents_PartitionsVertexSet(t *testing.T) {
	n := NewNeighbors[int]()
	n.AddEdge(1, 2)
	n.AddEdge(2, 3)
	n.AddEdge(4, 5)
	n.AddVertex(6)

	comps := ConnectedComponents(n)
	if len(comps) != 3 {
		t.Fatalf("got %d components, want 3", len(comps))
	}

	var sizes []int
	for _, c := range comps {
		sizes = append(sizes, len(c))
	}
	sort.Ints(sizes)
	if sizes[0] != 1 || sizes[1] != 2 || sizes[2] != 3 {
		t.Fatalf("unexpected component sizes: %v", sizes)
	}
}

func TestConnectedComponents_IgnoresSelfLoops(t *testing.T) {
	n := NewNeighbors[int]()
	n.AddVertex(1)
	n[1][1] = struct{}{} // inject a self-loop directly

	comps := ConnectedComponents(n)
	if len(comps) != 1 || len(comps[0]) != 1 {
		t.Fatalf("self loop should not merge a vertex with itself: %+v", comps)
	}
}

func TestMaximalCliques_TriangleAndPendant(t *testing.T) {
	n := NewNeighbors[int]()
	n.AddEdge(1, 2)
	n.AddEdge(2, 3)
	n.AddEdge(1, 3)
	n.AddEdge(3, 4)

	cliques := MaximalCliques(n)
	want := []map[int]struct{}{setOf(1, 2, 3), setOf(3, 4)}

	if len(cliques) != len(want) {
		t.Fatalf("got %d cliques, want %d: %v", len(cliques), len(want), cliques)
	}
	for _, w := range want {
		found := false
		for _, c := range cliques {
			if sameSet(c, w) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected clique %v not found in %v", w, cliques)
		}
	}
}

func sameSet(vs []int, want map[int]struct{}) bool {
	if len(vs) != len(want) {
		return false
	}
	for _, v := range vs {
		if _, ok := want[v]; !ok {
			return false
		}
	}
	return true
}

// bruteForceCliques checks every subset up to size 10 for exhaustive comparison
func bruteForceCliques(n Neighbors[int]) [][]int {
	var verts []int
	for v := range n {
		verts = append(verts, v)
	}
	sort.Ints(verts)

	var maximal [][]int
	var isClique func(set []int) bool
	isClique = func(set []int) bool {
		for i := range set {
			for j := i + 1; j < len(set); j++ {
				if _, ok := n[set[i]][set[j]]; !ok {
					return false
				}
			}
		}
		return true
	}

	total := 1 << len(verts)
	for mask := 1; mask < total; mask++ {
		var set []int
		for i, v := range verts {
			if mask&(1<<i) != 0 {
				set = append(set, v)
			}
		}
		if !isClique(set) {
			continue
		}
		// maximal iff no other vertex can be added
		maximalFlag := true
		for _, v := range verts {
			inSet := false
			for _, s := range set {
				if s == v {
					inSet = true
					break
				}
			}
			if inSet {
				continue
			}
			candidate := append(append([]int{}, set...), v)
			if isClique(candidate) {
				maximalFlag = false
				break
			}
		}
		if maximalFlag {
			maximal = append(maximal, set)
		}
	}
	return maximal
}

func TestMaximalCliques_MatchesBruteForce(t *testing.T) {
	n := NewNeighbors[int]()
	edges := [][2]int{{1, 2}, {2, 3}, {1, 3}, {3, 4}, {4, 5}, {3, 5}, {5, 6}}
	for _, e := range edges {
		n.AddEdge(e[0], e[1])
	}

	got := MaximalCliques(n)
	want := bruteForceCliques(n)

	if len(got) != len(want) {
		t.Fatalf("got %d maximal cliques, want %d\ngot=%v\nwant=%v", len(got), len(want), got, want)
	}
	for _, w := range want {
		found := false
		ws := setOf(w...)
		for _, g := range got {
			if sameSet(g, ws) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("brute force clique %v missing from BK output %v", w, got)
		}
	}
}

func TestEdgeDisjointCliqueCover_CoversEveryEdgeOnce(t *testing.T) {
	n := NewNeighbors[int]()
	n.AddEdge(1, 2)
	n.AddEdge(2, 3)
	n.AddEdge(1, 3)
	n.AddEdge(3, 4)

	cover := EdgeDisjointCliqueCover(n)

	seen := map[[2]int]int{}
	for _, clique := range cover {
		for i := range clique {
			for j := i + 1; j < len(clique); j++ {
				a, b := clique[i], clique[j]
				if a > b {
					a, b = b, a
				}
				seen[[2]int{a, b}]++
			}
		}
	}

	wantEdges := [][2]int{{1, 2}, {1, 3}, {2, 3}, {3, 4}}
	for _, e := range wantEdges {
		if seen[e] != 1 {
			t.Fatalf("edge %v covered %d times, want exactly 1", e, seen[e])
		}
	}
}
