package problemgen

import "strings"

const (
	maxQuestionLen    = 300
	maxExplanationLen = 600
)

// StructuralValidator checks required fields and length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c *Content, _ GenerateInput) *ValidationError {
	switch {
	case strings.TrimSpace(c.Question) == "":
		return reject(v, "question is empty")
	case len(c.Question) > maxQuestionLen:
		return reject(v, "question exceeds %d characters", maxQuestionLen)
	case strings.TrimSpace(c.Answer) == "":
		return reject(v, "answer is empty")
	case strings.TrimSpace(c.Explanation) == "":
		return reject(v, "explanation is empty")
	case len(c.Explanation) > maxExplanationLen:
		return reject(v, "explanation exceeds %d characters", maxExplanationLen)
	}
	switch c.Format {
	case FormatChoice, FormatNumber, FormatText:
	default:
		return reject(v, "format must be \"choice\", \"number\" or \"text\", got %q", c.Format)
	}
	return nil
}

// DifficultyValidator keeps problems inside the subskill's difficulty range.
type DifficultyValidator struct{}

func (v *DifficultyValidator) Name() string { return "difficulty" }

func (v *DifficultyValidator) Validate(c *Content, in GenerateInput) *ValidationError {
	r := in.Subskill.Difficulty
	if c.Difficulty < r.Start || c.Difficulty > r.End {
		return reject(v, "difficulty %.1f outside [%.1f, %.1f]", c.Difficulty, r.Start, r.End)
	}
	return nil
}
