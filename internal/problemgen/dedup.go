package problemgen

// DedupValidator drops problems whose question is already cached.
type DedupValidator struct{}

func (v *DedupValidator) Name() string { return "dedup" }

func (v *DedupValidator) Validate(c *Content, in GenerateInput) *ValidationError {
	q := normalizeText(c.Question)
	for _, prior := range in.PriorQuestions {
		if normalizeText(prior) == q {
			return reject(v, "question already asked: %q", c.Question)
		}
	}
	return nil
}
