// Package problemgen asks an LLM for practice problems and checks them
// before they reach the problem cache.
package problemgen

import (
	"context"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/store"
)

// Format is how a child answers a problem.
type Format string

const (
	// FormatChoice: tap one of 2-4 pictures or words.
	FormatChoice Format = "choice"
	// FormatNumber: say or type a whole number.
	FormatNumber Format = "number"
	// FormatText: say or type a word, e.g. a sight word.
	FormatText Format = "text"
)

// Content is the problem payload as stored in the cache.
type Content struct {
	UnitID      string   `json:"unit_id,omitempty"`
	Question    string   `json:"question"`
	Format      Format   `json:"format"`
	Answer      string   `json:"answer"`
	Choices     []string `json:"choices"`
	Hint        string   `json:"hint"`
	Explanation string   `json:"explanation"`
	Difficulty  float64  `json:"difficulty"`
}

// GenerateInput is everything the prompt is built from.
type GenerateInput struct {
	Subject  string
	Skill    curriculum.Skill
	Subskill curriculum.Subskill

	// TargetDifficulty is where the batch should center. Zero means the
	// subskill's catalog target.
	TargetDifficulty float64

	// Count is the number of problems requested.
	Count int

	// PriorQuestions are question texts already cached for this subskill.
	PriorQuestions []string
}

func (in GenerateInput) target() float64 {
	if in.TargetDifficulty > 0 {
		return in.Subskill.Difficulty.Clamp(in.TargetDifficulty)
	}
	return in.Subskill.Difficulty.Target
}

// Generator produces validated problems for one subskill.
type Generator interface {
	// Generate returns up to in.Count problems. Problems failing a
	// validator are dropped; an error is returned only when none survive.
	Generate(ctx context.Context, in GenerateInput) ([]store.Problem, error)
}
