package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/optimizer"
	"github.com/abhisek/kinderpath/internal/problemcache"
	"github.com/abhisek/kinderpath/internal/problemgen"
	"github.com/abhisek/kinderpath/internal/store"
)

// ErrGenerationFailed is returned by ServeProblems when the pool is empty
// and the generator could not fill it.
var ErrGenerationFailed = errors.New("failed to generate problems")

// ServeRequest asks for problems on one subskill.
type ServeRequest struct {
	StudentID  string
	SubskillID string
	Count      int
}

// ServeProblems returns up to req.Count problems for the subskill from the
// problem cache, generating a batch first when the pool is cold. Unknown
// subskills and cold pools without a generator yield an empty result.
func (e *Engine) ServeProblems(ctx context.Context, req ServeRequest) (out []optimizer.Candidate, err error) {
	defer func(t time.Time) { e.observe("serve_problems", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	cat := e.world.Current().Catalog
	ss, ok := cat.Subskill(req.SubskillID)
	if !ok || req.Count <= 0 {
		return []optimizer.Candidate{}, nil
	}
	key := store.ProblemKey{Subject: ss.SubjectID, SkillID: ss.SkillID, SubskillID: ss.ID}

	var fill problemcache.FillFunc
	if e.gen != nil {
		sk, _ := cat.Skill(ss.SkillID)
		fill = func(ctx context.Context) ([]store.Problem, error) {
			return e.generate(ctx, req.StudentID, sk, ss)
		}
	}
	pool, err := e.cache.GetOrFill(ctx, key, fill)
	if err != nil {
		return nil, err
	}

	return e.opt.Select(ctx, optimizer.Request{
		StudentID:  req.StudentID,
		Subject:    ss.SubjectID,
		UnitID:     ss.UnitID,
		SkillID:    ss.SkillID,
		SubskillID: ss.ID,
		Problems:   pool,
		Count:      req.Count,
	})
}

// generate fills a cold pool centered on the difficulty the student who
// triggered the fill should be working at.
func (e *Engine) generate(ctx context.Context, studentID string, sk curriculum.Skill, ss curriculum.Subskill) ([]store.Problem, error) {
	history, err := e.attempts.Query(ctx, store.AttemptQuery{StudentID: studentID, SubskillID: ss.ID})
	if err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, e.genTimeout)
	defer cancel()
	problems, err := e.gen.Generate(gctx, problemgen.GenerateInput{
		Subject:          ss.SubjectID,
		Skill:            sk,
		Subskill:         ss,
		TargetDifficulty: e.policy.OptimalDifficulty(ss.Difficulty, history),
		Count:            e.batch,
	})
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrGenerationFailed, ss.ID, err)
	}
	if len(problems) == 0 {
		return nil, fmt.Errorf("%w for %s: generator returned nothing", ErrGenerationFailed, ss.ID)
	}
	return problems, nil
}
