// Package recommend ranks the curriculum entities a student should work on
// next.
package recommend

import (
	"fmt"
	"sort"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/proficiency"
	"github.com/abhisek/kinderpath/internal/skillgraph"
	"github.com/abhisek/kinderpath/internal/unlock"
)

// Reason explains why an entity was recommended.
type Reason string

const (
	ReasonCoverageGap    Reason = "coverage_gap"
	ReasonPerformanceGap Reason = "performance_gap"
	ReasonBaseNode       Reason = "base_node"
	ReasonNearlyMastered Reason = "nearly_mastered"
)

// Recommendation is one ranked entry.
type Recommendation struct {
	EntityID           string                `json:"entity_id"`
	EntityType         curriculum.EntityType `json:"entity_type"`
	Subject            string                `json:"subject"`
	SkillID            string                `json:"skill_id"`
	PriorityOrder      int                   `json:"priority_order"`
	Reason             Reason                `json:"reason"`
	CurrentProficiency float64               `json:"current_proficiency"`
	Message            string                `json:"message"`
	ReadinessStatus    unlock.Status         `json:"readiness_status"`
	IsReady            bool                  `json:"is_ready"`
}

// Priority buckets; lower sorts first.
const (
	OrderHigh     = 1 // 0.4 <= p < mastery
	OrderMedium   = 2 // 0 < p < 0.4
	OrderLow      = 3 // p == 0
	OrderMastered = 4
)

const highPriorityFloor = 0.4

// Ranker orders candidates in four stages: untouched base nodes, graph
// next steps, unlocked unmastered subskills by bucket, then partially
// unlocked subskills. Earlier stages win; an entity appears once.
type Ranker struct {
	// Mastery is the proficiency at which an entity stops being
	// recommended. Zero means proficiency.MasteryThreshold.
	Mastery float64
}

func (r Ranker) mastery() float64 {
	if r.Mastery <= 0 {
		return proficiency.MasteryThreshold
	}
	return r.Mastery
}

// Bucket maps a proficiency to its priority order.
func (r Ranker) Bucket(p float64) int {
	switch {
	case p >= r.mastery():
		return OrderMastered
	case p >= highPriorityFloor:
		return OrderHigh
	case p > 0:
		return OrderMedium
	default:
		return OrderLow
	}
}

// Rank returns at most limit recommendations for the subject (all subjects
// when empty).
func (r Ranker) Rank(gr *skillgraph.Graph, cat *curriculum.Catalog, snap *proficiency.Snapshot, subject string, limit int) []Recommendation {
	if limit <= 0 {
		return []Recommendation{}
	}

	out := make([]Recommendation, 0, limit)
	picked := make(map[string]bool)
	full := func() bool { return len(out) >= limit }

	add := func(ref skillgraph.Ref, reason Reason, res unlock.Result) {
		if full() || picked[ref.ID] {
			return
		}
		picked[ref.ID] = true
		out = append(out, r.build(cat, snap, ref, reason, res))
	}

	inSubject := func(ref skillgraph.Ref) bool {
		if subject == "" {
			return true
		}
		ent, ok := cat.Entity(ref.ID, ref.Type)
		return ok && ent.SubjectID == subject
	}

	gapReason := func(ref skillgraph.Ref) Reason {
		if snap.Attempted(ref) {
			return ReasonPerformanceGap
		}
		return ReasonCoverageGap
	}

	// Stage 1: base nodes the student has never attempted.
	for _, ref := range gr.BaseNodes() {
		if full() {
			return out
		}
		if !inSubject(ref) || snap.Attempted(ref) {
			continue
		}
		add(ref, ReasonBaseNode, unlock.Evaluate(gr, snap, ref, unlock.EdgeThreshold))
	}

	// Stage 2: direct next steps in graph scan order.
	for _, ref := range gr.TopologicalOrder() {
		if full() {
			return out
		}
		if picked[ref.ID] || !gr.HasPrerequisites(ref) || !inSubject(ref) {
			continue
		}
		if snap.Get(ref) >= r.mastery() {
			continue
		}
		res := unlock.Evaluate(gr, snap, ref, unlock.EdgeThreshold)
		if res.Unlocked {
			add(ref, gapReason(ref), res)
		}
	}

	type candidate struct {
		ref   skillgraph.Ref
		order int
		res   unlock.Result
	}
	var unlocked, partial []candidate
	for _, ent := range cat.Entities(subject, "") {
		ref := skillgraph.Ref{ID: ent.ID, Type: ent.Type}
		if picked[ref.ID] {
			continue
		}
		p := snap.Get(ref)
		if p >= r.mastery() {
			continue
		}
		res := unlock.Evaluate(gr, snap, ref, unlock.EdgeThreshold)
		switch {
		case res.Unlocked:
			unlocked = append(unlocked, candidate{ref: ref, order: r.Bucket(p), res: res})
		case res.Status == unlock.StatusReadyForSubskill:
			partial = append(partial, candidate{ref: ref, res: res})
		}
	}

	// Stage 3: unlocked and not mastered, by bucket.
	sort.SliceStable(unlocked, func(i, j int) bool {
		if unlocked[i].order != unlocked[j].order {
			return unlocked[i].order < unlocked[j].order
		}
		return unlocked[i].ref.ID < unlocked[j].ref.ID
	})
	for _, c := range unlocked {
		if full() {
			return out
		}
		add(c.ref, gapReason(c.ref), c.res)
	}

	// Stage 4: partially unlocked fallback.
	sort.Slice(partial, func(i, j int) bool { return partial[i].ref.ID < partial[j].ref.ID })
	for _, c := range partial {
		if full() {
			return out
		}
		add(c.ref, ReasonCoverageGap, c.res)
	}
	return out
}

func (r Ranker) build(cat *curriculum.Catalog, snap *proficiency.Snapshot, ref skillgraph.Ref, reason Reason, res unlock.Result) Recommendation {
	p := snap.Get(ref)
	rec := Recommendation{
		EntityID:           ref.ID,
		EntityType:         ref.Type,
		PriorityOrder:      r.Bucket(p),
		Reason:             reason,
		CurrentProficiency: p,
		ReadinessStatus:    res.Status,
		IsReady:            res.Status.IsReady(),
	}
	desc := ref.ID
	switch ref.Type {
	case curriculum.EntitySkill:
		rec.SkillID = ref.ID
		if sk, ok := cat.Skill(ref.ID); ok {
			rec.Subject = sk.SubjectID
			desc = sk.Description
		}
	case curriculum.EntitySubskill:
		if ss, ok := cat.Subskill(ref.ID); ok {
			rec.Subject = ss.SubjectID
			rec.SkillID = ss.SkillID
			desc = ss.Description
		}
	}
	rec.Message = Message(reason, desc, p)
	return rec
}

// Message renders the learner-facing line for a recommendation.
func Message(reason Reason, description string, p float64) string {
	switch reason {
	case ReasonBaseNode:
		return fmt.Sprintf("Great place to start: %s", description)
	case ReasonNearlyMastered:
		return fmt.Sprintf("Almost there (%.0f%%): %s", p*100, description)
	case ReasonPerformanceGap:
		return fmt.Sprintf("Keep practicing (%.0f%%): %s", p*100, description)
	default:
		return fmt.Sprintf("Try something new: %s", description)
	}
}
