// Package optimizer picks which cached problems to serve, combining a
// spaced-repetition recency model with difficulty matching.
package optimizer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/abhisek/kinderpath/internal/store"
)

// RepeatPenalty scales the review probability of problems the student has
// already seen.
const RepeatPenalty = 0.5

// Candidate is a problem annotated with its stage scores.
type Candidate struct {
	Problem            store.Problem `json:"problem"`
	Probability        float64       `json:"probability"`
	IsNew              bool          `json:"is_new"`
	DaysSince          int           `json:"days_since,omitempty"`
	DifficultyDistance float64       `json:"difficulty_distance"`
}

// ReviewProbability scores one problem from its latest review. A nil
// review means the problem is new.
func ReviewProbability(latest *store.Review, now time.Time) (p float64, isNew bool, days int) {
	if latest == nil {
		return 1, true, 0
	}
	days = int(now.Sub(latest.Timestamp).Hours() / 24)
	if days < 0 {
		days = 0
	}
	p = PoissonCDF(days, DecayLambda(latest.Normalized()))
	return p * RepeatPenalty, false, days
}

// LatestReviews indexes the newest review per problem by (timestamp,
// sequence).
func LatestReviews(reviews []store.Review) map[string]store.Review {
	latest := make(map[string]store.Review)
	for _, r := range reviews {
		cur, ok := latest[r.ProblemID]
		if !ok || r.Newer(cur) {
			latest[r.ProblemID] = r
		}
	}
	return latest
}

// RankByReview is stage one: every problem scored by review probability,
// highest first. Ties keep input order.
func RankByReview(problems []store.Problem, reviews []store.Review, now time.Time) []Candidate {
	latest := LatestReviews(reviews)
	out := make([]Candidate, len(problems))
	for i, p := range problems {
		var rv *store.Review
		if r, ok := latest[p.ID]; ok {
			rv = &r
		}
		prob, isNew, days := ReviewProbability(rv, now)
		out[i] = Candidate{Problem: p, Probability: prob, IsNew: isNew, DaysSince: days}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

// MatchDifficulty is stage two: the top 2*count candidates are re-sorted
// with new problems first, then by distance to optimal, and count returned.
func MatchDifficulty(ranked []Candidate, optimal float64, count int) []Candidate {
	if count <= 0 || len(ranked) == 0 {
		return []Candidate{}
	}
	pool := make([]Candidate, min(len(ranked), count*2))
	copy(pool, ranked)
	for i := range pool {
		pool[i].DifficultyDistance = math.Abs(pool[i].Problem.Difficulty - optimal)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].IsNew != pool[j].IsNew {
			return pool[i].IsNew
		}
		return pool[i].DifficultyDistance < pool[j].DifficultyDistance
	})
	return pool[:min(len(pool), count)]
}

// FallbackID derives a stable id from a problem's content.
func FallbackID(p store.Problem) string {
	h := sha256.New()
	h.Write([]byte(p.Subject + "\x00" + p.SkillID + "\x00" + p.SubskillID + "\x00"))
	h.Write(p.Payload)
	return "p-" + hex.EncodeToString(h.Sum(nil))[:16]
}

// payloadUnit reads a "unit_id" field carried in the payload, if any.
func payloadUnit(payload json.RawMessage) string {
	var meta struct {
		UnitID string `json:"unit_id"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &meta) != nil {
		return ""
	}
	return meta.UnitID
}

// normalize fills missing ids and unit ids without failing the batch.
// Unit ids come from the payload first, then from unitOf.
func normalize(problems []store.Problem, unitOf func(p store.Problem) string) []store.Problem {
	out := make([]store.Problem, len(problems))
	for i, p := range problems {
		if p.ID == "" {
			p.ID = FallbackID(p)
		}
		if p.UnitID == "" {
			p.UnitID = payloadUnit(p.Payload)
		}
		if p.UnitID == "" && unitOf != nil {
			p.UnitID = unitOf(p)
		}
		out[i] = p
	}
	return out
}
