package skillgraph

import (
	"slices"
	"sort"

	"github.com/abhisek/kinderpath/internal/curriculum"
)

// Graph holds prerequisite edges with precomputed indices. It is immutable
// after New and safe for concurrent readers.
type Graph struct {
	all       []Edge
	live      []Edge
	prereqs   map[Ref][]Edge
	unlocks   map[Ref][]Edge
	topoOrder []Ref
	bases     []Ref
}

// New validates edges and builds the graph. Only non-draft edges are
// indexed for queries; drafts are retained for export.
func New(edges []Edge) (*Graph, error) {
	if err := validateEdges(edges); err != nil {
		return nil, err
	}

	gr := &Graph{
		all:     slices.Clone(edges),
		prereqs: make(map[Ref][]Edge),
		unlocks: make(map[Ref][]Edge),
	}
	for _, e := range edges {
		if e.Draft {
			continue
		}
		gr.live = append(gr.live, e)
		gr.prereqs[e.Unlocks] = append(gr.prereqs[e.Unlocks], e)
		gr.unlocks[e.Prerequisite] = append(gr.unlocks[e.Prerequisite], e)
	}

	order, stuck := kahn(gr.live)
	if len(stuck) > 0 {
		return nil, &CycleError{Nodes: stuck}
	}
	gr.topoOrder = order

	// Base nodes: out-edges, no in-edges
	for r := range gr.unlocks {
		if len(gr.prereqs[r]) == 0 {
			gr.bases = append(gr.bases, r)
		}
	}
	sortRefs(gr.bases)

	return gr, nil
}

// Empty returns a graph with no edges.
func Empty() *Graph {
	gr, _ := New(nil)
	return gr
}

// kahn returns the nodes of edges in topological order. When the edges
// contain a cycle, the nodes left with unresolved in-degree are returned as
// stuck, sorted.
func kahn(edges []Edge) (order []Ref, stuck []string) {
	inDegree := make(map[Ref]int)
	dependents := make(map[Ref][]Ref)
	for _, e := range edges {
		if _, ok := inDegree[e.Prerequisite]; !ok {
			inDegree[e.Prerequisite] = 0
		}
		inDegree[e.Unlocks]++
		dependents[e.Prerequisite] = append(dependents[e.Prerequisite], e.Unlocks)
	}

	var queue []Ref
	for r, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, r)
		}
	}
	// Sort initial queue for deterministic ordering
	sortRefs(queue)

	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		order = append(order, r)

		deps := slices.Clone(dependents[r])
		sortRefs(deps)
		for _, d := range deps {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if len(order) < len(inDegree) {
		for r, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, r.String())
			}
		}
		sort.Strings(stuck)
	}
	return order, stuck
}

func sortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].ID != refs[j].ID {
			return refs[i].ID < refs[j].ID
		}
		return refs[i].Type < refs[j].Type
	})
}

// PrerequisitesOf returns the live edges whose target is the given entity.
func (gr *Graph) PrerequisitesOf(id string, typ curriculum.EntityType) []Edge {
	return slices.Clone(gr.prereqs[Ref{ID: id, Type: typ}])
}

// UnlocksOf returns the live edges whose prerequisite is the given entity.
func (gr *Graph) UnlocksOf(id string, typ curriculum.EntityType) []Edge {
	return slices.Clone(gr.unlocks[Ref{ID: id, Type: typ}])
}

// Edges returns all live edges in declaration order.
func (gr *Graph) Edges() []Edge {
	return slices.Clone(gr.live)
}

// AllEdges returns every edge including drafts.
func (gr *Graph) AllEdges() []Edge {
	return slices.Clone(gr.all)
}

// TopologicalOrder returns every node touched by a live edge, prerequisites
// first. Ties are broken by id.
func (gr *Graph) TopologicalOrder() []Ref {
	return slices.Clone(gr.topoOrder)
}

// BaseNodes returns the nodes that unlock something but require nothing,
// sorted by id.
func (gr *Graph) BaseNodes() []Ref {
	return slices.Clone(gr.bases)
}

// IsBase reports whether r is a base node.
func (gr *Graph) IsBase(r Ref) bool {
	return len(gr.unlocks[r]) > 0 && len(gr.prereqs[r]) == 0
}

// HasPrerequisites reports whether r is the target of any live edge.
func (gr *Graph) HasPrerequisites(r Ref) bool {
	return len(gr.prereqs[r]) > 0
}
