package problemgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write practice problems for kindergarten children (ages 4-6).

Rules:
- Each problem practices exactly the given subskill. Keep numbers within the range the subskill names.
- Use short, concrete sentences a grown-up can read aloud. Name everyday objects: apples, ducks, blocks.
- Plain ASCII text only. Write sums as "2 + 3", never with symbols a child cannot read.
- Use "choice" when the child picks between pictures, shapes or words; give 2 to 4 options with exactly one correct.
- Use "number" when the answer is a whole number, and "text" when it is a single word.
- Rate difficulty on a 0-10 scale and stay inside the requested range.
- Never repeat a question from the "already asked" list.`

func buildUserMessage(in GenerateInput, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", in.Subject)
	fmt.Fprintf(&b, "Skill: %s (%s)\n", in.Skill.ID, in.Skill.Description)
	fmt.Fprintf(&b, "Subskill: %s (%s)\n", in.Subskill.ID, in.Subskill.Description)
	r := in.Subskill.Difficulty
	fmt.Fprintf(&b, "Difficulty range: %.1f to %.1f, aim for %.1f\n", r.Start, r.End, in.target())
	fmt.Fprintf(&b, "Number of problems: %d\n", in.Count)

	b.WriteString("\nAlready asked:\n")
	b.WriteString(numberedList(in.PriorQuestions, cfg.MaxPriorQuestions))
	return b.String()
}

// numberedList keeps the last max items; "None" when empty.
func numberedList(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}
	var b strings.Builder
	for i, s := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(b.String(), "\n")
}
