package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxScore = 10

// ParseScore normalizes the score shapes found in imported records into a
// 0..10 value. It accepts numbers, numeric strings, and objects carrying the
// score under "score" or "evaluation.score". Out-of-range values are clamped
// and reported through clamped.
func ParseScore(v any) (score float64, clamped bool, err error) {
	raw, err := rawScore(v)
	if err != nil {
		return 0, false, err
	}
	score, clamped = clampScore(raw)
	return score, clamped, nil
}

func rawScore(v any) (float64, error) {
	switch s := v.(type) {
	case float64:
		return s, nil
	case float32:
		return float64(s), nil
	case int:
		return float64(s), nil
	case int64:
		return float64(s), nil
	case json.Number:
		return s.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("parse score %q: %w", s, err)
		}
		return f, nil
	case map[string]any:
		if ev, ok := s["evaluation"]; ok {
			if f, err := rawScore(ev); err == nil {
				return f, nil
			}
		}
		if sc, ok := s["score"]; ok {
			return rawScore(sc)
		}
		return 0, fmt.Errorf("record has no score field")
	case nil:
		return 0, fmt.Errorf("score is missing")
	default:
		return 0, fmt.Errorf("unsupported score type %T", v)
	}
}

// clampScore limits a score to 0..10.
func clampScore(v float64) (float64, bool) {
	switch {
	case math.IsNaN(v), v < 0:
		return 0, true
	case v > maxScore:
		return maxScore, true
	default:
		return v, false
	}
}

func validScore(v float64) bool {
	return v >= 0 && v <= maxScore
}

// clampRead clamps a stored score and records the event.
func (s *Store) clampRead(field, id string, v float64) float64 {
	c, clamped := clampScore(v)
	if clamped {
		s.log.Warn("clamped out-of-range stored value", "field", field, "id", id, "value", v)
		s.metrics.Clamped(field)
	}
	return c
}
