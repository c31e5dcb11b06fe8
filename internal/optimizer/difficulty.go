package optimizer

import (
	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/proficiency"
	"github.com/abhisek/kinderpath/internal/store"
)

// DifficultyPolicy recommends the difficulty to serve next for a subskill.
type DifficultyPolicy interface {
	OptimalDifficulty(rng curriculum.DifficultyRange, attempts []store.Attempt) float64
}

// TargetSuccessPolicy holds difficulty at the catalog target while the
// student's success rate stays within Band of TargetRate and steps it
// otherwise.
type TargetSuccessPolicy struct {
	TargetRate float64
	Band       float64
	Step       float64
}

// DefaultTargetSuccessPolicy aims for 85% success, give or take 10%.
func DefaultTargetSuccessPolicy(step float64) TargetSuccessPolicy {
	if step <= 0 {
		step = 1
	}
	return TargetSuccessPolicy{TargetRate: 0.85, Band: 0.10, Step: step}
}

func (p TargetSuccessPolicy) OptimalDifficulty(rng curriculum.DifficultyRange, attempts []store.Attempt) float64 {
	if len(attempts) == 0 {
		return rng.Target
	}
	rate := proficiency.AverageScore(attempts)
	d := rng.Target
	switch {
	case rate > p.TargetRate+p.Band:
		d += p.Step
	case rate < p.TargetRate-p.Band:
		d -= p.Step
	}
	return rng.Clamp(d)
}

// FixedDifficulty always recommends the same value.
type FixedDifficulty float64

func (f FixedDifficulty) OptimalDifficulty(curriculum.DifficultyRange, []store.Attempt) float64 {
	return float64(f)
}
