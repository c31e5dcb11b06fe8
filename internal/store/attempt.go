package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type attemptRepo struct {
	s *Store
}

func (r *attemptRepo) Record(ctx context.Context, a *Attempt) error {
	if a.StudentID == "" || a.SubskillID == "" {
		return fmt.Errorf("record attempt: student_id and subskill_id are required")
	}
	if !validScore(a.Score) {
		return fmt.Errorf("record attempt: %w, got %g", ErrInvalidScore, a.Score)
	}

	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return &UnavailableError{Op: "attempts.record", Err: err}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	a.Timestamp = a.Timestamp.UTC()
	a.Sequence = seq

	q, args := builder().Insert(tableAttempts).
		Columns("id", "sequence", "student_id", "subject", "skill_id", "subskill_id", "score", "created_at").
		Values(a.ID, a.Sequence, a.StudentID, a.Subject, a.SkillID, a.SubskillID, a.Score, a.Timestamp.UnixNano()).
		Query()
	return r.s.exec(ctx, "attempts.record", q, args)
}

func (r *attemptRepo) Query(ctx context.Context, aq AttemptQuery) ([]Attempt, error) {
	sel := builder().
		Select("id", "sequence", "student_id", "subject", "skill_id", "subskill_id", "score", "created_at").
		From(entsql.Table(tableAttempts)).
		Where(entsql.EQ("student_id", aq.StudentID))
	if aq.Subject != "" {
		sel.Where(entsql.EQ("subject", aq.Subject))
	}
	if aq.SkillID != "" {
		sel.Where(entsql.EQ("skill_id", aq.SkillID))
	}
	if aq.SubskillID != "" {
		sel.Where(entsql.EQ("subskill_id", aq.SubskillID))
	}
	if !aq.Since.IsZero() {
		sel.Where(entsql.GTE("created_at", aq.Since.UnixNano()))
	}
	if !aq.Until.IsZero() {
		sel.Where(entsql.LTE("created_at", aq.Until.UnixNano()))
	}
	sel.OrderBy("created_at", "sequence")
	q, args := sel.Query()

	var out []Attempt
	err := r.s.query(ctx, "attempts.query", q, args, func(rows *entsql.Rows) error {
		out = out[:0]
		for rows.Next() {
			var a Attempt
			var ts int64
			if err := rows.Scan(&a.ID, &a.Sequence, &a.StudentID, &a.Subject, &a.SkillID, &a.SubskillID, &a.Score, &ts); err != nil {
				return fmt.Errorf("scan attempt: %w", err)
			}
			a.Timestamp = time.Unix(0, ts).UTC()
			a.Score = r.s.clampRead("attempt_score", a.ID, a.Score)
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
