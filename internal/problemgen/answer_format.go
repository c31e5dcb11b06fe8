package problemgen

import (
	"strconv"
	"strings"
)

// AnswerValidator checks the answer against the declared format.
type AnswerValidator struct{}

func (v *AnswerValidator) Name() string { return "answer-format" }

func (v *AnswerValidator) Validate(c *Content, _ GenerateInput) *ValidationError {
	switch c.Format {
	case FormatNumber:
		n, err := strconv.Atoi(strings.TrimSpace(c.Answer))
		if err != nil || n < 0 {
			return reject(v, "number answer %q is not a whole number", c.Answer)
		}
		if len(c.Choices) > 0 {
			return reject(v, "number format must not carry choices")
		}
	case FormatText:
		if strings.ContainsAny(strings.TrimSpace(c.Answer), " \t") {
			return reject(v, "text answer %q must be a single word", c.Answer)
		}
	case FormatChoice:
		if len(c.Choices) < 2 || len(c.Choices) > 4 {
			return reject(v, "choice format needs 2 to 4 choices, got %d", len(c.Choices))
		}
		seen := make(map[string]bool, len(c.Choices))
		matches := 0
		for _, ch := range c.Choices {
			key := normalizeText(ch)
			if seen[key] {
				return reject(v, "duplicate choice %q", ch)
			}
			seen[key] = true
			if key == normalizeText(c.Answer) {
				matches++
			}
		}
		if matches != 1 {
			return reject(v, "answer %q is not one of the choices", c.Answer)
		}
	}
	return nil
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
