package proficiency

import (
	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/skillgraph"
	"github.com/abhisek/kinderpath/internal/store"
)

// Snapshot maps every entity of a catalog to a student's proficiency at the
// time it was built. Entities absent from the snapshot have proficiency 0.
type Snapshot struct {
	StudentID string
	Strategy  string
	values    map[skillgraph.Ref]float64
	counts    map[skillgraph.Ref]int
}

// Build computes a snapshot from a student's attempts. Subskills with
// attempts but no catalog entry are included; skills average over every
// declared subskill, counting un-attempted ones as 0.
func Build(studentID string, cat *curriculum.Catalog, attempts []store.Attempt, strat Strategy) *Snapshot {
	bySubskill := make(map[string][]store.Attempt)
	for _, a := range attempts {
		bySubskill[a.SubskillID] = append(bySubskill[a.SubskillID], a)
	}

	snap := &Snapshot{
		StudentID: studentID,
		Strategy:  strat.Name(),
		values:    make(map[skillgraph.Ref]float64),
		counts:    make(map[skillgraph.Ref]int),
	}
	for id, as := range bySubskill {
		ref := skillgraph.Ref{ID: id, Type: curriculum.EntitySubskill}
		snap.values[ref] = strat.Subskill(as)
		snap.counts[ref] = len(as)
	}

	for _, sk := range cat.SkillsOf("") {
		subs := cat.SubskillsOf(sk.ID)
		vals := make([]float64, 0, len(subs))
		n := 0
		for _, ss := range subs {
			ref := skillgraph.Ref{ID: ss.ID, Type: curriculum.EntitySubskill}
			vals = append(vals, snap.values[ref])
			n += snap.counts[ref]
		}
		ref := skillgraph.Ref{ID: sk.ID, Type: curriculum.EntitySkill}
		snap.values[ref] = Clamp(Mean(vals))
		snap.counts[ref] = n
	}
	return snap
}

// Get returns the proficiency of r, 0 when unknown.
func (s *Snapshot) Get(r skillgraph.Ref) float64 {
	return s.values[r]
}

// Of is Get for an id/type pair.
func (s *Snapshot) Of(id string, typ curriculum.EntityType) float64 {
	return s.values[skillgraph.Ref{ID: id, Type: typ}]
}

// Attempts returns how many attempts back r. For a skill this is the sum
// over its subskills.
func (s *Snapshot) Attempts(r skillgraph.Ref) int {
	return s.counts[r]
}

// Attempted reports whether the student has any attempt at r.
func (s *Snapshot) Attempted(r skillgraph.Ref) bool {
	return s.counts[r] > 0
}
