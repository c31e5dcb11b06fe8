// Package unlock evaluates prerequisite gates against a proficiency
// snapshot.
package unlock

import (
	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/proficiency"
	"github.com/abhisek/kinderpath/internal/skillgraph"
)

// Status classifies how far an entity's prerequisites are satisfied.
type Status string

const (
	StatusReady            Status = "Ready"
	StatusReadyForSubskill Status = "Ready for Subskill"
	StatusReadyForSkill    Status = "Ready for Skill"
	StatusNotReady         Status = "Not Ready"
)

// IsReady reports whether s lets a learner start working on the entity.
func (s Status) IsReady() bool {
	return s == StatusReady || s == StatusReadyForSubskill
}

// ThresholdPolicy decides the proficiency an edge requires.
type ThresholdPolicy func(e skillgraph.Edge) float64

// EdgeThreshold uses each edge's declared threshold.
func EdgeThreshold(e skillgraph.Edge) float64 { return e.Threshold }

// Uniform ignores declared thresholds and requires t everywhere.
func Uniform(t float64) ThresholdPolicy {
	return func(skillgraph.Edge) float64 { return t }
}

// PrerequisiteStatus is the evaluation of one edge.
type PrerequisiteStatus struct {
	PrerequisiteID     string                `json:"prerequisite_id"`
	PrerequisiteType   curriculum.EntityType `json:"prerequisite_type"`
	RequiredThreshold  float64               `json:"required_threshold"`
	CurrentProficiency float64               `json:"current_proficiency"`
	Met                bool                  `json:"met"`
}

// Result is the unlock evaluation of one entity.
type Result struct {
	EntityID      string                `json:"entity_id"`
	EntityType    curriculum.EntityType `json:"entity_type"`
	Unlocked      bool                  `json:"unlocked"`
	Status        Status                `json:"readiness_status"`
	Prerequisites []PrerequisiteStatus  `json:"prerequisites"`
}

// Evaluate checks every live prerequisite edge of ref. The entity is
// unlocked only when all edges are met; an entity without edges is always
// unlocked.
func Evaluate(gr *skillgraph.Graph, snap *proficiency.Snapshot, ref skillgraph.Ref, policy ThresholdPolicy) Result {
	if policy == nil {
		policy = EdgeThreshold
	}
	edges := gr.PrerequisitesOf(ref.ID, ref.Type)
	res := Result{
		EntityID:      ref.ID,
		EntityType:    ref.Type,
		Unlocked:      true,
		Prerequisites: make([]PrerequisiteStatus, 0, len(edges)),
	}

	var skillEdges, skillMet, subEdges, subMet int
	for _, e := range edges {
		need := policy(e)
		cur := snap.Get(e.Prerequisite)
		met := cur >= need
		res.Prerequisites = append(res.Prerequisites, PrerequisiteStatus{
			PrerequisiteID:     e.Prerequisite.ID,
			PrerequisiteType:   e.Prerequisite.Type,
			RequiredThreshold:  need,
			CurrentProficiency: cur,
			Met:                met,
		})
		if !met {
			res.Unlocked = false
		}
		if e.Prerequisite.Type == curriculum.EntitySkill {
			skillEdges++
			if met {
				skillMet++
			}
		} else {
			subEdges++
			if met {
				subMet++
			}
		}
	}

	switch {
	case res.Unlocked:
		res.Status = StatusReady
	case subEdges > 0 && subMet == subEdges:
		res.Status = StatusReadyForSubskill
	case skillEdges > 0 && skillMet == skillEdges:
		res.Status = StatusReadyForSkill
	default:
		res.Status = StatusNotReady
	}
	return res
}

// Unlocked returns the catalog entities of the given subject and type
// (empty means all) whose prerequisites are met, in catalog order.
func Unlocked(gr *skillgraph.Graph, cat *curriculum.Catalog, snap *proficiency.Snapshot, typ curriculum.EntityType, subject string) []skillgraph.Ref {
	var out []skillgraph.Ref
	for _, e := range cat.Entities(subject, typ) {
		ref := skillgraph.Ref{ID: e.ID, Type: e.Type}
		if Evaluate(gr, snap, ref, EdgeThreshold).Unlocked {
			out = append(out, ref)
		}
	}
	return out
}
