package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abhisek/kinderpath/internal/skillgraph"
)

// Attempt is a scored student submission. Score is on the 0..10 scale;
// normalization happens in consumers via Normalized.
type Attempt struct {
	ID         string    `json:"id"`
	Sequence   int64     `json:"sequence"`
	StudentID  string    `json:"student_id"`
	Subject    string    `json:"subject"`
	SkillID    string    `json:"skill_id"`
	SubskillID string    `json:"subskill_id"`
	Score      float64   `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
}

// Normalized returns the score on the 0..1 scale.
func (a Attempt) Normalized() float64 { return a.Score / 10 }

// Review is one submitted solution review of a specific problem.
type Review struct {
	ID        string    `json:"id"`
	Sequence  int64     `json:"sequence"`
	StudentID string    `json:"student_id"`
	ProblemID string    `json:"problem_id"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

func (r Review) Normalized() float64 { return r.Score / 10 }

// Newer reports whether r sorts after other in (timestamp, sequence) order.
func (r Review) Newer(other Review) bool {
	if !r.Timestamp.Equal(other.Timestamp) {
		return r.Timestamp.After(other.Timestamp)
	}
	return r.Sequence > other.Sequence
}

// Problem is a generated practice problem. Records are never mutated;
// regeneration creates a new one.
type Problem struct {
	ID         string          `json:"problem_id"`
	Subject    string          `json:"subject"`
	UnitID     string          `json:"unit_id,omitempty"`
	SkillID    string          `json:"skill_id"`
	SubskillID string          `json:"subskill_id"`
	Difficulty float64         `json:"difficulty"`
	Payload    json.RawMessage `json:"problem_payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ProblemKey addresses a problem pool.
type ProblemKey struct {
	Subject    string
	SkillID    string
	SubskillID string
}

func (k ProblemKey) String() string {
	return k.Subject + "/" + k.SkillID + "/" + k.SubskillID
}

func (p Problem) Key() ProblemKey {
	return ProblemKey{Subject: p.Subject, SkillID: p.SkillID, SubskillID: p.SubskillID}
}

// AttemptQuery filters attempts. StudentID is required; zero values of the
// other fields match everything. Since and Until are inclusive.
type AttemptQuery struct {
	StudentID  string
	Subject    string
	SkillID    string
	SubskillID string
	Since      time.Time
	Until      time.Time
}

// AttemptRepo is the append-only attempt store.
type AttemptRepo interface {
	// Record validates and appends an attempt, assigning ID, sequence and
	// (when zero) timestamp.
	Record(ctx context.Context, a *Attempt) error

	// Query returns matching attempts ordered by (timestamp, sequence).
	Query(ctx context.Context, q AttemptQuery) ([]Attempt, error)
}

// ReviewRepo is the append-only review store.
type ReviewRepo interface {
	Record(ctx context.Context, r *Review) error

	// History returns a student's reviews, newest first by (timestamp,
	// sequence). An empty problemID returns every problem's reviews.
	History(ctx context.Context, studentID, problemID string) ([]Review, error)
}

// ProblemRepo is the durable problem cache.
type ProblemRepo interface {
	// Put stores a problem, assigning an ID when empty.
	Put(ctx context.Context, p *Problem) error

	// Get returns the problems for a key in insertion order.
	Get(ctx context.Context, key ProblemKey) ([]Problem, error)

	// ByID returns ErrNotFound for an unknown id.
	ByID(ctx context.Context, id string) (Problem, error)
}

// EdgeRepo persists prerequisite edges, drafts included.
type EdgeRepo interface {
	// Replace atomically swaps the whole edge set.
	Replace(ctx context.Context, edges []skillgraph.Edge) error

	List(ctx context.Context) ([]skillgraph.Edge, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventRepo provides append access to operational events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// LLMRequestCount returns the number of recorded LLM requests.
	LLMRequestCount(ctx context.Context) (int, error)
}
