package problemgen

import (
	"regexp"
	"strconv"
	"strings"
)

// ArithmeticValidator recomputes "a + b" and "a - b" sums found in the
// question. Questions without one pass.
type ArithmeticValidator struct{}

func (v *ArithmeticValidator) Name() string { return "arithmetic" }

var sumRe = regexp.MustCompile(`(?:^|[^\d])(\d{1,2})\s*([+-])\s*(\d{1,2})(?:[^\d]|$)`)

func (v *ArithmeticValidator) Validate(c *Content, _ GenerateInput) *ValidationError {
	if c.Format != FormatNumber && c.Format != FormatChoice {
		return nil
	}
	want, ok := computeSum(c.Question)
	if !ok {
		return nil
	}
	got, err := strconv.Atoi(strings.TrimSpace(c.Answer))
	if err != nil {
		// A choice answer like "five" cannot be checked.
		return nil
	}
	if want < 0 {
		return reject(v, "%q goes below zero", c.Question)
	}
	if got != want {
		return reject(v, "computed %d but the answer says %d", want, got)
	}
	return nil
}

func computeSum(text string) (int, bool) {
	m := sumRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[3])
	if m[2] == "-" {
		return a - b, true
	}
	return a + b, true
}
