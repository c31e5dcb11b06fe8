package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type reviewRepo struct {
	s *Store
}

func (r *reviewRepo) Record(ctx context.Context, rv *Review) error {
	if rv.StudentID == "" || rv.ProblemID == "" {
		return fmt.Errorf("record review: student_id and problem_id are required")
	}
	if !validScore(rv.Score) {
		return fmt.Errorf("record review: %w, got %g", ErrInvalidScore, rv.Score)
	}

	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return &UnavailableError{Op: "reviews.record", Err: err}
	}
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	if rv.Timestamp.IsZero() {
		rv.Timestamp = time.Now()
	}
	rv.Timestamp = rv.Timestamp.UTC()
	rv.Sequence = seq

	q, args := builder().Insert(tableReviews).
		Columns("id", "sequence", "student_id", "problem_id", "score", "reviewed_at").
		Values(rv.ID, rv.Sequence, rv.StudentID, rv.ProblemID, rv.Score, rv.Timestamp.UnixNano()).
		Query()
	return r.s.exec(ctx, "reviews.record", q, args)
}

func (r *reviewRepo) History(ctx context.Context, studentID, problemID string) ([]Review, error) {
	sel := builder().
		Select("id", "sequence", "student_id", "problem_id", "score", "reviewed_at").
		From(entsql.Table(tableReviews)).
		Where(entsql.EQ("student_id", studentID))
	if problemID != "" {
		sel.Where(entsql.EQ("problem_id", problemID))
	}
	sel.OrderBy(entsql.Desc("reviewed_at"), entsql.Desc("sequence"))
	q, args := sel.Query()

	var out []Review
	err := r.s.query(ctx, "reviews.history", q, args, func(rows *entsql.Rows) error {
		out = out[:0]
		for rows.Next() {
			var rv Review
			var ts int64
			if err := rows.Scan(&rv.ID, &rv.Sequence, &rv.StudentID, &rv.ProblemID, &rv.Score, &ts); err != nil {
				return fmt.Errorf("scan review: %w", err)
			}
			rv.Timestamp = time.Unix(0, ts).UTC()
			rv.Score = r.s.clampRead("review_score", rv.ID, rv.Score)
			out = append(out, rv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
