package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type problemRepo struct {
	s *Store
}

func (r *problemRepo) Put(ctx context.Context, p *Problem) error {
	if p.Subject == "" || p.SkillID == "" || p.SubskillID == "" {
		return fmt.Errorf("put problem: subject, skill_id and subskill_id are required")
	}
	if len(p.Payload) == 0 {
		p.Payload = json.RawMessage("{}")
	}
	if !json.Valid(p.Payload) {
		return fmt.Errorf("put problem: payload is not valid JSON")
	}

	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return &UnavailableError{Op: "problems.put", Err: err}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()

	q, args := builder().Insert(tableProblems).
		Columns("id", "sequence", "subject", "unit_id", "skill_id", "subskill_id", "difficulty", "payload", "created_at").
		Values(p.ID, seq, p.Subject, p.UnitID, p.SkillID, p.SubskillID, p.Difficulty, string(p.Payload), p.CreatedAt.UnixNano()).
		Query()
	return r.s.exec(ctx, "problems.put", q, args)
}

var problemColumns = []string{"id", "subject", "unit_id", "skill_id", "subskill_id", "difficulty", "payload", "created_at"}

func (r *problemRepo) Get(ctx context.Context, key ProblemKey) ([]Problem, error) {
	q, args := builder().
		Select(problemColumns...).
		From(entsql.Table(tableProblems)).
		Where(entsql.And(
			entsql.EQ("subject", key.Subject),
			entsql.EQ("skill_id", key.SkillID),
			entsql.EQ("subskill_id", key.SubskillID),
		)).
		OrderBy("sequence").
		Query()

	var out []Problem
	err := r.s.query(ctx, "problems.get", q, args, func(rows *entsql.Rows) error {
		var err error
		out, err = scanProblems(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemRepo) ByID(ctx context.Context, id string) (Problem, error) {
	q, args := builder().
		Select(problemColumns...).
		From(entsql.Table(tableProblems)).
		Where(entsql.EQ("id", id)).
		Query()

	var out []Problem
	err := r.s.query(ctx, "problems.by_id", q, args, func(rows *entsql.Rows) error {
		var err error
		out, err = scanProblems(rows)
		return err
	})
	if err != nil {
		return Problem{}, err
	}
	if len(out) == 0 {
		return Problem{}, fmt.Errorf("problem %q: %w", id, ErrNotFound)
	}
	return out[0], nil
}

func scanProblems(rows *entsql.Rows) ([]Problem, error) {
	var out []Problem
	for rows.Next() {
		var p Problem
		var payload string
		var ts int64
		if err := rows.Scan(&p.ID, &p.Subject, &p.UnitID, &p.SkillID, &p.SubskillID, &p.Difficulty, &payload, &ts); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		p.Payload = json.RawMessage(payload)
		p.CreatedAt = time.Unix(0, ts).UTC()
		out = append(out, p)
	}
	return out, nil
}
