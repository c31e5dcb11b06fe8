// Package proficiency turns scored attempts into 0..1 proficiency values
// for subskills and skills.
package proficiency

import (
	"math"

	"github.com/abhisek/kinderpath/internal/store"
)

const (
	// MasteryThreshold is the proficiency at or above which an entity is
	// mastered.
	MasteryThreshold = 0.8

	// ReadinessThreshold is the lower bar used to decide whether a learner
	// may progress.
	ReadinessThreshold = 0.6

	// SubskillCredibilityCap is the attempt count at which a subskill's raw
	// average is fully trusted.
	SubskillCredibilityCap = 15

	// SubjectCredibilityCap is the attempt count at which a subject's raw
	// average is fully trusted.
	SubjectCredibilityCap = 150

	// DefaultPrior is the neutral score low-evidence estimates are pulled
	// toward.
	DefaultPrior = 0.5
)

// Strategy computes a subskill's proficiency from its attempts. Unlock
// decisions use Plain; display mastery uses Blended. The two must not be
// mixed within one decision.
type Strategy interface {
	Name() string
	Subskill(attempts []store.Attempt) float64
}

var (
	// Plain is the mean normalized score.
	Plain Strategy = plainStrategy{}
	// Blended pulls low-evidence averages toward DefaultPrior until
	// SubskillCredibilityCap attempts are seen.
	Blended Strategy = blendedStrategy{limit: SubskillCredibilityCap}
)

type plainStrategy struct{}

func (plainStrategy) Name() string { return "plain" }

func (plainStrategy) Subskill(attempts []store.Attempt) float64 {
	return AverageScore(attempts)
}

type blendedStrategy struct{ limit int }

func (blendedStrategy) Name() string { return "blended" }

// Subskill returns 0 when there are no attempts: no evidence means not
// started, not the prior.
func (b blendedStrategy) Subskill(attempts []store.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	return Blend(AverageScore(attempts), len(attempts), b.limit)
}

// AverageScore returns the mean normalized score, or 0 for no attempts.
func AverageScore(attempts []store.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range attempts {
		sum += a.Normalized()
	}
	return Clamp(sum / float64(len(attempts)))
}

// Credibility returns sqrt(min(n, limit)/limit).
func Credibility(n, limit int) float64 {
	if limit <= 0 || n <= 0 {
		return 0
	}
	return math.Sqrt(float64(min(n, limit)) / float64(limit))
}

// Blend pulls avg toward DefaultPrior in proportion to how little evidence
// backs it.
func Blend(avg float64, n, limit int) float64 {
	c := Credibility(n, limit)
	return Clamp(avg*c + DefaultPrior*(1-c))
}

// Mean returns the arithmetic mean of values, or 0 when empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Clamp limits v to [0, 1].
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IsMastered reports whether p meets the mastery threshold.
func IsMastered(p float64) bool {
	return p >= MasteryThreshold
}
