// Package analytics rolls attempts up the subject → unit → skill →
// subskill hierarchy for reporting.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/proficiency"
	"github.com/abhisek/kinderpath/internal/skillgraph"
	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/unlock"
)

// Priority is the display label of a mastery value.
type Priority string

const (
	PriorityMastered   Priority = "Mastered"
	PriorityHigh       Priority = "High Priority"
	PriorityMedium     Priority = "Medium Priority"
	PriorityNotStarted Priority = "Not Started"
)

// PriorityOf labels a blended mastery value.
func PriorityOf(mastery float64) Priority {
	switch {
	case mastery >= proficiency.MasteryThreshold:
		return PriorityMastered
	case mastery >= 0.4:
		return PriorityHigh
	case mastery > 0:
		return PriorityMedium
	default:
		return PriorityNotStarted
	}
}

// Metrics are the statistics shared by every level.
type Metrics struct {
	Mastery      float64  `json:"mastery"`
	Proficiency  float64  `json:"proficiency"`
	AvgScore     float64  `json:"avg_score"`
	Completion   float64  `json:"completion"`
	AttemptCount int      `json:"attempt_count"`
	Priority     Priority `json:"priority"`
}

// SubskillMetrics is a leaf of the report. ReadinessStatus compares its
// blended mastery against the readiness threshold.
type SubskillMetrics struct {
	ID              string        `json:"id"`
	Description     string        `json:"description"`
	ReadinessStatus unlock.Status `json:"readiness_status"`
	Metrics
}

// SkillMetrics rolls up every declared subskill of a skill.
type SkillMetrics struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Subskills   []SubskillMetrics `json:"subskills"`
	Metrics
}

// UnitMetrics rolls up the skills of a unit.
type UnitMetrics struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Skills []SkillMetrics `json:"skills"`
	Metrics
}

// SubjectMetrics is the top of the hierarchy. Credibility grows with the
// subject's attempt count.
type SubjectMetrics struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Credibility float64       `json:"credibility"`
	Units       []UnitMetrics `json:"units"`
	Metrics
}

// DateRange echoes the attempt window a report covers; nil ends are open.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Summary totals the report across every subject it includes.
type Summary struct {
	StudentID         string  `json:"student_id"`
	TotalAttempts     int     `json:"total_attempts"`
	SubskillsTotal    int     `json:"subskills_total"`
	SubskillsTouched  int     `json:"subskills_attempted"`
	SubskillsMastered int     `json:"subskills_mastered"`
	OverallMastery    float64 `json:"overall_mastery"`
	OverallAvgScore   float64 `json:"overall_avg_score"`
	Completion        float64 `json:"completion"`
}

// Report is the output of Aggregate.
type Report struct {
	Summary          Summary          `json:"summary"`
	DateRange        DateRange        `json:"date_range"`
	HierarchicalData []SubjectMetrics `json:"hierarchical_data"`
}

// Aggregator computes reports from the attempt store.
type Aggregator struct {
	attempts  proficiency.AttemptSource
	world     *skillgraph.Holder
	readiness float64
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithReadinessThreshold sets the uniform bar used for each subskill's
// readiness status. Values outside (0, 1] are ignored.
func WithReadinessThreshold(t float64) Option {
	return func(a *Aggregator) {
		if t > 0 && t <= 1 {
			a.readiness = t
		}
	}
}

// NewAggregator reports against the catalog and graph published in world.
func NewAggregator(attempts proficiency.AttemptSource, world *skillgraph.Holder, opts ...Option) *Aggregator {
	a := &Aggregator{attempts: attempts, world: world, readiness: proficiency.ReadinessThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Metrics reports a student's progress for one subject (all when empty),
// limited to attempts within [start, end] when given.
func (a *Aggregator) Metrics(ctx context.Context, studentID, subject string, start, end *time.Time) (*Report, error) {
	q := store.AttemptQuery{StudentID: studentID}
	if start != nil {
		q.Since = *start
	}
	if end != nil {
		q.Until = *end
	}
	rows, err := a.attempts.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("hierarchical metrics: %w", err)
	}
	cur := a.world.Current()
	rep := aggregate(studentID, cur.Catalog, cur.Graph, rows, subject, a.readiness)
	rep.DateRange = DateRange{Start: start, End: end}
	return rep, nil
}

// Aggregate builds the report from already-loaded attempts.
func Aggregate(studentID string, cat *curriculum.Catalog, gr *skillgraph.Graph, rows []store.Attempt, subject string) *Report {
	return aggregate(studentID, cat, gr, rows, subject, proficiency.ReadinessThreshold)
}

func aggregate(studentID string, cat *curriculum.Catalog, gr *skillgraph.Graph, rows []store.Attempt, subject string, readiness float64) *Report {
	bySubskill := make(map[string][]store.Attempt)
	for _, r := range rows {
		bySubskill[r.SubskillID] = append(bySubskill[r.SubskillID], r)
	}
	plain := proficiency.Build(studentID, cat, rows, proficiency.Plain)

	rep := &Report{Summary: Summary{StudentID: studentID}, HierarchicalData: []SubjectMetrics{}}
	var allSubMastery, allSubScores []float64

	for _, subj := range cat.Subjects() {
		if subject != "" && subj.ID != subject {
			continue
		}
		sm := SubjectMetrics{ID: subj.ID, Name: subj.Name}
		var subjRows []store.Attempt

		var unitVals []float64
		var subjTotal, subjTouched int
		for _, u := range cat.UnitsOf(subj.ID) {
			um := UnitMetrics{ID: u.ID, Name: u.Name}
			var skillVals []float64
			var unitTotal, unitTouched int
			var unitRows []store.Attempt

			for _, sk := range cat.SkillsOfUnit(u.ID) {
				km := SkillMetrics{ID: sk.ID, Description: sk.Description}
				var subVals []float64
				var skillTouched int
				var skillRows []store.Attempt

				for _, ss := range cat.SubskillsOf(sk.ID) {
					as := bySubskill[ss.ID]
					ref := skillgraph.Ref{ID: ss.ID, Type: curriculum.EntitySubskill}
					m := subskillMetrics(as)
					m.Proficiency = plain.Get(ref)
					km.Subskills = append(km.Subskills, SubskillMetrics{
						ID:              ss.ID,
						Description:     ss.Description,
						ReadinessStatus: unlock.Evaluate(gr, plain, ref, unlock.Uniform(readiness)).Status,
						Metrics:         m,
					})
					subVals = append(subVals, m.Mastery)
					allSubMastery = append(allSubMastery, m.Mastery)
					if len(as) > 0 {
						skillTouched++
						allSubScores = append(allSubScores, m.AvgScore)
						rep.Summary.SubskillsTouched++
						if m.Mastery >= proficiency.MasteryThreshold {
							rep.Summary.SubskillsMastered++
						}
					}
					skillRows = append(skillRows, as...)
				}

				km.Metrics = rollup(subVals, skillTouched, len(subVals), skillRows)
				km.Proficiency = plain.Of(sk.ID, curriculum.EntitySkill)
				um.Skills = append(um.Skills, km)
				skillVals = append(skillVals, km.Mastery)
				unitTotal += len(subVals)
				unitTouched += skillTouched
				unitRows = append(unitRows, skillRows...)
			}

			um.Metrics = rollup(skillVals, unitTouched, unitTotal, unitRows)
			um.Proficiency = meanProficiency(um.Skills)
			sm.Units = append(sm.Units, um)
			unitVals = append(unitVals, um.Mastery)
			subjTotal += unitTotal
			subjTouched += unitTouched
			subjRows = append(subjRows, unitRows...)
		}

		sm.Metrics = rollup(unitVals, subjTouched, subjTotal, subjRows)
		sm.Credibility = proficiency.Credibility(len(subjRows), proficiency.SubjectCredibilityCap)
		var unitProf []float64
		for _, u := range sm.Units {
			unitProf = append(unitProf, u.Proficiency)
		}
		sm.Proficiency = proficiency.Mean(unitProf)
		rep.HierarchicalData = append(rep.HierarchicalData, sm)
		rep.Summary.TotalAttempts += len(subjRows)
		rep.Summary.SubskillsTotal += subjTotal
	}

	rep.Summary.OverallMastery = proficiency.Mean(allSubMastery)
	rep.Summary.OverallAvgScore = proficiency.Mean(allSubScores)
	if rep.Summary.SubskillsTotal > 0 {
		rep.Summary.Completion = float64(rep.Summary.SubskillsTouched) / float64(rep.Summary.SubskillsTotal) * 100
	}
	return rep
}

// subskillMetrics computes the leaf statistics. Mastery is the blended
// score; a subskill without attempts scores 0.
func subskillMetrics(as []store.Attempt) Metrics {
	m := Metrics{AttemptCount: len(as)}
	if len(as) > 0 {
		m.AvgScore = proficiency.AverageScore(as)
		m.Mastery = proficiency.Blended.Subskill(as)
		m.Completion = 100
	}
	m.Priority = PriorityOf(m.Mastery)
	return m
}

// rollup averages child mastery over every declared child.
func rollup(childMastery []float64, touched, total int, rows []store.Attempt) Metrics {
	m := Metrics{
		Mastery:      proficiency.Mean(childMastery),
		AvgScore:     proficiency.AverageScore(rows),
		AttemptCount: len(rows),
	}
	if total > 0 {
		m.Completion = float64(touched) / float64(total) * 100
	}
	m.Priority = PriorityOf(m.Mastery)
	return m
}

func meanProficiency(skills []SkillMetrics) float64 {
	vals := make([]float64, len(skills))
	for i, s := range skills {
		vals[i] = s.Proficiency
	}
	return proficiency.Mean(vals)
}
