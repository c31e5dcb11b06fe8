package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/problemgen"
	"github.com/abhisek/kinderpath/internal/skillgraph"
	"github.com/abhisek/kinderpath/internal/store"
)

// RecordAttempt appends a scored attempt. The subskill must be in the
// catalog; subject and skill are taken from it.
func (e *Engine) RecordAttempt(ctx context.Context, a *store.Attempt) (err error) {
	defer func(t time.Time) { e.observe("record_attempt", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	ss, ok := e.world.Current().Catalog.Subskill(a.SubskillID)
	if !ok {
		return fmt.Errorf("record attempt: subskill %q: %w", a.SubskillID, store.ErrNotFound)
	}
	a.Subject = ss.SubjectID
	a.SkillID = ss.SkillID
	return e.attempts.Record(ctx, a)
}

// RecordReview appends a review of a cached problem.
func (e *Engine) RecordReview(ctx context.Context, r *store.Review) (err error) {
	defer func(t time.Time) { e.observe("record_review", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	if _, err := e.problems.ByID(ctx, r.ProblemID); err != nil {
		return fmt.Errorf("record review: %w", err)
	}
	return e.reviews.Record(ctx, r)
}

// SubmitAnswer grades answer against the stored problem and records both
// the review and an attempt on the problem's subskill.
func (e *Engine) SubmitAnswer(ctx context.Context, studentID, problemID, answer string) (rv store.Review, err error) {
	defer func(t time.Time) { e.observe("submit_answer", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	p, err := e.problems.ByID(ctx, problemID)
	if err != nil {
		return store.Review{}, fmt.Errorf("submit answer: %w", err)
	}
	score, err := problemgen.Grade(p.Payload, answer)
	if err != nil {
		return store.Review{}, fmt.Errorf("submit answer: %w", err)
	}

	rv = store.Review{StudentID: studentID, ProblemID: p.ID, Score: score}
	if err := e.reviews.Record(ctx, &rv); err != nil {
		return store.Review{}, err
	}
	a := store.Attempt{
		StudentID:  studentID,
		Subject:    p.Subject,
		SkillID:    p.SkillID,
		SubskillID: p.SubskillID,
		Score:      score,
		Timestamp:  rv.Timestamp,
	}
	if err := e.attempts.Record(ctx, &a); err != nil {
		return rv, err
	}
	return rv, nil
}

// Reload publishes a new curriculum and edge set together. Nothing changes
// unless the edges are acyclic, reference only catalog entities, and the
// curriculum version is not older than the loaded one.
func (e *Engine) Reload(ctx context.Context, cat *curriculum.Catalog, edges []skillgraph.Edge) (err error) {
	defer func(t time.Time) { e.observe("reload", t, err) }(time.Now())

	if err := skillgraph.CheckCatalog(edges, cat); err != nil {
		return err
	}
	if err := skillgraph.Validate(edges); err != nil {
		return err
	}
	gr, err := skillgraph.New(edges)
	if err != nil {
		return err
	}
	if err := e.world.Check(cat); err != nil {
		return err
	}
	if err := e.edges.Replace(ctx, edges); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if _, err := e.world.Swap(cat, gr); err != nil {
		return err
	}
	e.log.Info("curriculum reloaded", "version", cat.Version(), "edges", len(edges))
	return nil
}

// ReloadFile reads a curriculum file, including its prerequisites, and
// publishes it with Reload.
func (e *Engine) ReloadFile(ctx context.Context, path string) (*curriculum.Catalog, error) {
	cat, f, err := curriculum.Load(path)
	if err != nil {
		return nil, err
	}
	if err := e.Reload(ctx, cat, skillgraph.FromSpecs(f.Prerequisites)); err != nil {
		return nil, err
	}
	return cat, nil
}
