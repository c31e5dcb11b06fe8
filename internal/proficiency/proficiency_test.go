package proficiency

import (
	"math"
	"testing"

	"github.com/abhisek/kinderpath/internal/store"
)

func attempts(subskill string, scores ...float64) []store.Attempt {
	out := make([]store.Attempt, len(scores))
	for i, s := range scores {
		out[i] = store.Attempt{StudentID: "kid", SubskillID: subskill, Score: s}
	}
	return out
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAverageScore(t *testing.T) {
	tests := []struct {
		scores []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{9}, 0.9},
		{[]float64{10, 0}, 0.5},
		{[]float64{8, 8, 8}, 0.8},
	}
	for _, tt := range tests {
		if got := AverageScore(attempts("s", tt.scores...)); !approx(got, tt.want) {
			t.Errorf("AverageScore(%v) = %v, want %v", tt.scores, got, tt.want)
		}
	}
}

func TestPlain_Monotonic(t *testing.T) {
	history := attempts("s", 3, 7, 5, 9)
	before := Plain.Subskill(history)

	up := Plain.Subskill(append(append([]store.Attempt{}, history...), attempts("s", 10)...))
	if up < before {
		t.Errorf("a perfect attempt lowered proficiency: %v -> %v", before, up)
	}
	down := Plain.Subskill(append(append([]store.Attempt{}, history...), attempts("s", 0)...))
	if down > before {
		t.Errorf("a zero attempt raised proficiency: %v -> %v", before, down)
	}
}

func TestCredibility(t *testing.T) {
	tests := []struct {
		n, limit int
		want     float64
	}{
		{0, 15, 0},
		{15, 15, 1},
		{30, 15, 1},
		{15, 150, math.Sqrt(0.1)},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := Credibility(tt.n, tt.limit); !approx(got, tt.want) {
			t.Errorf("Credibility(%d, %d) = %v, want %v", tt.n, tt.limit, got, tt.want)
		}
	}
}

func TestBlended(t *testing.T) {
	if got := Blended.Subskill(nil); got != 0 {
		t.Errorf("no attempts: got %v, want 0", got)
	}
	// One perfect attempt: c = sqrt(1/15)
	c := math.Sqrt(1.0 / 15)
	want := 1*c + 0.5*(1-c)
	if got := Blended.Subskill(attempts("s", 10)); !approx(got, want) {
		t.Errorf("one perfect attempt: got %v, want %v", got, want)
	}
	// Full credibility means the raw average.
	full := attempts("s", 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6)
	if got := Blended.Subskill(full); !approx(got, 0.6) {
		t.Errorf("15 attempts: got %v, want 0.6", got)
	}
}

func TestClamp(t *testing.T) {
	for in, want := range map[float64]float64{-0.2: 0, 0.3: 0.3, 1.7: 1} {
		if got := Clamp(in); got != want {
			t.Errorf("Clamp(%v) = %v", in, got)
		}
	}
	if Clamp(math.NaN()) != 0 {
		t.Error("NaN should clamp to 0")
	}
}

func TestIsMastered_Boundary(t *testing.T) {
	if !IsMastered(0.8) {
		t.Error("0.8 is mastered")
	}
	if IsMastered(0.7999999) {
		t.Error("0.7999999 is not mastered")
	}
}
