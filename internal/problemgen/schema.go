package problemgen

import "github.com/abhisek/kinderpath/internal/llm"

// ProblemSetSchema is the response shape requested from the LLM.
var ProblemSetSchema = &llm.Schema{
	Name:        "kindergarten-problem-set",
	Description: "A batch of kindergarten practice problems for one subskill",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problems": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "What the tutor says to the child, one or two short sentences",
						},
						"format": map[string]any{
							"type":        "string",
							"enum":        []any{"choice", "number", "text"},
							"description": "choice: pick one option; number: answer with a whole number; text: answer with a word",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct answer. For choice format, the exact text of the correct option.",
						},
						"choices": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "2 to 4 options for choice format. Empty for number and text.",
						},
						"hint": map[string]any{
							"type":        "string",
							"description": "A short nudge a parent could read aloud",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "How to get the answer, in words a five year old understands",
						},
						"difficulty": map[string]any{
							"type":        "number",
							"minimum":     0,
							"maximum":     10,
							"description": "Difficulty on the curriculum's 0-10 scale",
						},
					},
					"required":             []any{"question", "format", "answer", "choices", "hint", "explanation", "difficulty"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"problems"},
		"additionalProperties": false,
	},
}
