// Package skillgraph holds the prerequisite graph between skills and
// subskills.
package skillgraph

import (
	"fmt"
	"strings"

	"github.com/abhisek/kinderpath/internal/curriculum"
)

// Ref identifies a graph node.
type Ref struct {
	ID   string                `json:"id"`
	Type curriculum.EntityType `json:"type"`
}

func (r Ref) String() string {
	return string(r.Type) + ":" + r.ID
}

// Edge is a prerequisite relationship: Unlocks requires Prerequisite to reach
// Threshold. Draft edges are authoring previews and never affect unlocks.
type Edge struct {
	Prerequisite Ref     `json:"prerequisite"`
	Unlocks      Ref     `json:"unlocks"`
	Threshold    float64 `json:"threshold"`
	Draft        bool    `json:"draft,omitempty"`
}

func (e Edge) key() string {
	return e.Prerequisite.String() + ">" + e.Unlocks.String()
}

// FromSpecs converts curriculum edge declarations into graph edges.
func FromSpecs(specs []curriculum.EdgeSpec) []Edge {
	edges := make([]Edge, 0, len(specs))
	for _, s := range specs {
		edges = append(edges, Edge{
			Prerequisite: Ref{ID: s.Prerequisite, Type: s.PrerequisiteType},
			Unlocks:      Ref{ID: s.Unlocks, Type: s.UnlocksType},
			Threshold:    s.Threshold,
			Draft:        s.Draft,
		})
	}
	return edges
}

// CycleError reports prerequisite edges that form a cycle. A graph holding
// one cannot be evaluated.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("prerequisite cycle detected involving: %s", strings.Join(e.Nodes, ", "))
}

// ToSpecs converts graph edges back into curriculum edge declarations.
func ToSpecs(edges []Edge) []curriculum.EdgeSpec {
	specs := make([]curriculum.EdgeSpec, 0, len(edges))
	for _, e := range edges {
		specs = append(specs, curriculum.EdgeSpec{
			Prerequisite:     e.Prerequisite.ID,
			PrerequisiteType: e.Prerequisite.Type,
			Unlocks:          e.Unlocks.ID,
			UnlocksType:      e.Unlocks.Type,
			Threshold:        e.Threshold,
			Draft:            e.Draft,
		})
	}
	return specs
}
