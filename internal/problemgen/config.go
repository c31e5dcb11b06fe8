package problemgen

// Config controls the LLMGenerator.
type Config struct {
	// Validators run in order on every problem; the first failure drops it.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxPriorQuestions caps the prior questions quoted in the prompt.
	MaxPriorQuestions int

	// MaxCount caps a single batch.
	MaxCount int
}

func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerValidator{},
			&ArithmeticValidator{},
			&DifficultyValidator{},
			&DedupValidator{},
		},
		MaxTokens:         2048,
		Temperature:       0.7,
		MaxPriorQuestions: 10,
		MaxCount:          10,
	}
}
