package problemgen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// numberWords lets a child answer "three" for 3.
var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

// CheckAnswer compares a child's answer with the correct one. Case and
// spacing are ignored; number words count as digits; a choice may be
// given by its 1-based position.
func CheckAnswer(answer string, c *Content) bool {
	answer = normalizeText(answer)
	if answer == "" {
		return false
	}
	switch c.Format {
	case FormatChoice:
		if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(c.Choices) {
			answer = normalizeText(c.Choices[idx-1])
		}
		return answer == normalizeText(c.Answer)
	case FormatNumber:
		got, ok := parseWhole(answer)
		want, ok2 := parseWhole(normalizeText(c.Answer))
		return ok && ok2 && got == want
	default:
		return answer == normalizeText(c.Answer)
	}
}

func parseWhole(s string) (int, bool) {
	if n, ok := numberWords[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// Grade scores an answer on the 0..10 review scale.
func Grade(payload json.RawMessage, answer string) (float64, error) {
	var c Content
	if err := json.Unmarshal(payload, &c); err != nil {
		return 0, fmt.Errorf("grade: decode problem payload: %w", err)
	}
	if strings.TrimSpace(c.Answer) == "" {
		return 0, fmt.Errorf("grade: problem payload has no answer")
	}
	if CheckAnswer(answer, &c) {
		return 10, nil
	}
	return 0, nil
}
