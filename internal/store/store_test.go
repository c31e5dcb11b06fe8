package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/retry"
	"github.com/abhisek/kinderpath/internal/skillgraph"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), WithRetry(retry.Policy{MaxAttempts: 1}))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	var prev int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if n <= prev {
			t.Fatalf("sequence went from %d to %d", prev, n)
		}
		prev = n
	}
}

func TestAttempts_RecordAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.Attempts()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, sc := range []float64{4, 8, 10} {
		a := &Attempt{StudentID: "kid-1", Subject: "math", SkillID: "count-to-10", SubskillID: "count-objects-5",
			Score: sc, Timestamp: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Record(ctx, a); err != nil {
			t.Fatalf("record: %v", err)
		}
		if a.ID == "" || a.Sequence == 0 {
			t.Errorf("record did not assign id/sequence: %+v", a)
		}
	}
	other := &Attempt{StudentID: "kid-2", Subject: "math", SkillID: "count-to-10", SubskillID: "count-objects-5", Score: 1}
	if err := repo.Record(ctx, other); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := repo.Query(ctx, AttemptQuery{StudentID: "kid-1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d attempts, want 3", len(got))
	}
	if got[0].Score != 4 || got[2].Score != 10 {
		t.Errorf("attempts out of order: %+v", got)
	}
	if !got[1].Timestamp.Equal(base.Add(time.Hour)) {
		t.Errorf("timestamp round trip: got %v", got[1].Timestamp)
	}

	ranged, err := repo.Query(ctx, AttemptQuery{StudentID: "kid-1", Since: base.Add(30 * time.Minute), Until: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("query range: %v", err)
	}
	if len(ranged) != 1 || ranged[0].Score != 8 {
		t.Errorf("range query = %+v, want the single score-8 attempt", ranged)
	}

	none, err := repo.Query(ctx, AttemptQuery{StudentID: "kid-1", SubskillID: "blend-cvc"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d attempts for unattempted subskill", len(none))
	}
}

func TestAttempts_RejectsInvalidScore(t *testing.T) {
	s := openTestStore(t)
	for _, sc := range []float64{-1, 10.5} {
		err := s.Attempts().Record(context.Background(), &Attempt{StudentID: "k", SubskillID: "x", Score: sc})
		if !errors.Is(err, ErrInvalidScore) {
			t.Errorf("score %g: got %v, want ErrInvalidScore", sc, err)
		}
	}
}

func TestAttempts_ClampsStoredOutOfRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.DB().Exec(`INSERT INTO attempts (id, sequence, student_id, subject, skill_id, subskill_id, score, created_at)
		VALUES ('bad', 1, 'k', 'math', 'sk', 'ss', 42, 0)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.Attempts().Query(ctx, AttemptQuery{StudentID: "k"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Score != 10 {
		t.Errorf("got %+v, want score clamped to 10", got)
	}
}

func TestReviews_HistoryNewestFirstWithSequenceTieBreak(t *testing.T) {
	s := openTestStore(t)
	repo := s.Reviews()
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := &Review{StudentID: "k", ProblemID: "p1", Score: 3, Timestamp: ts}
	second := &Review{StudentID: "k", ProblemID: "p1", Score: 9, Timestamp: ts}
	older := &Review{StudentID: "k", ProblemID: "p1", Score: 5, Timestamp: ts.Add(-time.Hour)}
	for _, r := range []*Review{first, second, older} {
		if err := repo.Record(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := repo.Record(ctx, &Review{StudentID: "k", ProblemID: "p2", Score: 7}); err != nil {
		t.Fatalf("record: %v", err)
	}

	hist, err := repo.History(ctx, "k", "p1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("got %d reviews, want 3", len(hist))
	}
	if hist[0].ID != second.ID || hist[1].ID != first.ID || hist[2].ID != older.ID {
		t.Errorf("order = %v, %v, %v", hist[0].Score, hist[1].Score, hist[2].Score)
	}
	if !second.Newer(*first) {
		t.Error("equal timestamps should fall back to sequence")
	}

	all, err := repo.History(ctx, "k", "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d reviews across problems, want 4", len(all))
	}
}

func TestProblems_PutGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.Problems()
	ctx := context.Background()
	key := ProblemKey{Subject: "math", SkillID: "add-within-5", SubskillID: "add-objects-5"}

	for i := 0; i < 2; i++ {
		p := &Problem{Subject: key.Subject, SkillID: key.SkillID, SubskillID: key.SubskillID,
			Difficulty: float64(2 + i), Payload: json.RawMessage(`{"question":"2 + 1"}`)}
		if err := repo.Put(ctx, p); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	got, err := repo.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0].Difficulty != 2 {
		t.Fatalf("got %+v", got)
	}
	if string(got[0].Payload) != `{"question":"2 + 1"}` {
		t.Errorf("payload = %s", got[0].Payload)
	}

	one, err := repo.ByID(ctx, got[1].ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if one.Difficulty != 3 || one.SubskillID != key.SubskillID {
		t.Errorf("by id = %+v", one)
	}
	if _, err := repo.ByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: err = %v, want ErrNotFound", err)
	}

	empty, err := repo.Get(ctx, ProblemKey{Subject: "math", SkillID: "x", SubskillID: "y"})
	if err != nil || len(empty) != 0 {
		t.Errorf("cold key: got %d problems, err %v", len(empty), err)
	}

	if err := repo.Put(ctx, &Problem{Subject: "math", SkillID: "a", SubskillID: "b", Payload: json.RawMessage("{")}); err == nil {
		t.Error("expected error for invalid payload")
	}
}

func TestEdges_ReplaceList(t *testing.T) {
	s := openTestStore(t)
	repo := s.Edges()
	ctx := context.Background()
	edges := []skillgraph.Edge{
		{Prerequisite: skillgraph.Ref{ID: "a", Type: curriculum.EntitySkill}, Unlocks: skillgraph.Ref{ID: "b1", Type: curriculum.EntitySubskill}, Threshold: 0.8},
		{Prerequisite: skillgraph.Ref{ID: "b1", Type: curriculum.EntitySubskill}, Unlocks: skillgraph.Ref{ID: "c1", Type: curriculum.EntitySubskill}, Threshold: 0.6, Draft: true},
	}
	if err := repo.Replace(ctx, edges); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d edges, want 2", len(got))
	}
	if got[0] != edges[0] || got[1] != edges[1] {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := repo.Replace(ctx, edges[:1]); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ = repo.List(ctx)
	if len(got) != 1 {
		t.Errorf("replace should drop old edges, got %d", len(got))
	}
}

func TestEvents_AppendLLMRequest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ev := s.Events()
	if err := ev.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "problem-gen", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	n, err := ev.LLMRequestCount(ctx)
	if err != nil || n != 1 {
		t.Errorf("count = %d, %v; want 1", n, err)
	}
}

func TestQuery_CanceledContextIsUnavailable(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Attempts().Query(ctx, AttemptQuery{StudentID: "k"})
	if !IsUnavailable(err) {
		t.Fatalf("got %v, want UnavailableError", err)
	}
	var ue *UnavailableError
	errors.As(err, &ue)
	if !ue.Retryable() || ue.Op != "attempts.query" {
		t.Errorf("unexpected error shape: %+v", ue)
	}
}
