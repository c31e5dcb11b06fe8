package skillgraph

import (
	"github.com/abhisek/kinderpath/internal/curriculum"
)

// ExportOptions filter a learning-graph export. Zero values select
// everything except drafts.
type ExportOptions struct {
	Subject       string
	EntityType    curriculum.EntityType
	IncludeDrafts bool
}

// Node is an exported graph node annotated from the catalog.
type Node struct {
	ID          string                `json:"id"`
	Type        curriculum.EntityType `json:"type"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
}

type Metadata struct {
	CurriculumVersion string                `json:"curriculum_version"`
	Subject           string                `json:"subject,omitempty"`
	EntityType        curriculum.EntityType `json:"entity_type,omitempty"`
	NodeCount         int                   `json:"node_count"`
	EdgeCount         int                   `json:"edge_count"`
	IncludesDrafts    bool                  `json:"includes_drafts,omitempty"`
}

// LearningGraph is the visualization view of the prerequisite graph.
type LearningGraph struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// Export returns the edges touching at least one entity that matches the
// filters, plus their endpoints deduplicated by id. Endpoints unknown to the
// catalog are exported without annotations.
func (gr *Graph) Export(cat *curriculum.Catalog, opts ExportOptions) LearningGraph {
	source := gr.live
	if opts.IncludeDrafts {
		source = gr.all
	}

	matches := func(r Ref) bool {
		if opts.EntityType != "" && r.Type != opts.EntityType {
			return false
		}
		if opts.Subject == "" {
			return true
		}
		ent, ok := cat.Entity(r.ID, r.Type)
		return ok && ent.SubjectID == opts.Subject
	}

	out := LearningGraph{Nodes: []Node{}, Edges: []Edge{}}
	seen := make(map[string]bool)
	addNode := func(r Ref) {
		if seen[r.ID] {
			return
		}
		seen[r.ID] = true
		n := Node{ID: r.ID, Type: r.Type}
		if ent, ok := cat.Entity(r.ID, r.Type); ok {
			n.Subject = ent.SubjectID
			n.Description = ent.Description
		}
		out.Nodes = append(out.Nodes, n)
	}

	for _, e := range source {
		if !matches(e.Prerequisite) && !matches(e.Unlocks) {
			continue
		}
		out.Edges = append(out.Edges, e)
		addNode(e.Prerequisite)
		addNode(e.Unlocks)
	}

	out.Metadata = Metadata{
		CurriculumVersion: cat.Version(),
		Subject:           opts.Subject,
		EntityType:        opts.EntityType,
		NodeCount:         len(out.Nodes),
		EdgeCount:         len(out.Edges),
		IncludesDrafts:    opts.IncludeDrafts,
	}
	return out
}
