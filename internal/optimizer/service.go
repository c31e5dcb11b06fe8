package optimizer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/proficiency"
	"github.com/abhisek/kinderpath/internal/store"
)

// ReviewSource is the read side of the review store.
type ReviewSource interface {
	History(ctx context.Context, studentID, problemID string) ([]store.Review, error)
}

// Request describes one selection.
type Request struct {
	StudentID  string
	Subject    string
	UnitID     string
	SkillID    string
	SubskillID string
	Problems   []store.Problem
	Count      int
}

// Optimizer selects problems for a student.
type Optimizer struct {
	reviews  ReviewSource
	attempts proficiency.AttemptSource
	catalog  proficiency.CatalogSource
	policy   DifficultyPolicy
	now      func() time.Time
	log      *logger.Logger
}

type Option func(*Optimizer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Optimizer) { o.now = now }
}

func WithPolicy(p DifficultyPolicy) Option {
	return func(o *Optimizer) { o.policy = p }
}

func WithLogger(l *logger.Logger) Option {
	return func(o *Optimizer) { o.log = logger.OrNop(l) }
}

func New(reviews ReviewSource, attempts proficiency.AttemptSource, catalog proficiency.CatalogSource, opts ...Option) *Optimizer {
	o := &Optimizer{
		reviews:  reviews,
		attempts: attempts,
		catalog:  catalog,
		policy:   DefaultTargetSuccessPolicy(1),
		now:      time.Now,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Select returns up to req.Count problems, annotated. An empty pool is not
// an error.
func (o *Optimizer) Select(ctx context.Context, req Request) ([]Candidate, error) {
	if len(req.Problems) == 0 || req.Count <= 0 {
		return []Candidate{}, nil
	}

	var (
		reviews  []store.Review
		attempts []store.Attempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reviews, err = o.reviews.History(gctx, req.StudentID, "")
		return err
	})
	g.Go(func() error {
		var err error
		attempts, err = o.attempts.Query(gctx, store.AttemptQuery{StudentID: req.StudentID, SubskillID: req.SubskillID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("select problems: %w", err)
	}

	cat := o.catalog.Load()
	problems := normalize(req.Problems, func(p store.Problem) string {
		if ss, ok := cat.Subskill(p.SubskillID); ok {
			return ss.UnitID
		}
		return req.UnitID
	})

	rng := o.difficultyRange(cat, req.SubskillID, problems)
	optimal := o.policy.OptimalDifficulty(rng, attempts)

	ranked := RankByReview(problems, reviews, o.now())
	picked := MatchDifficulty(ranked, optimal, req.Count)
	o.log.Debug("selected problems",
		"student", req.StudentID, "subskill", req.SubskillID,
		"pool", len(problems), "picked", len(picked), "optimal_difficulty", optimal)
	return picked, nil
}

// SelectOptimalProblems is Select without annotations.
func (o *Optimizer) SelectOptimalProblems(ctx context.Context, req Request) ([]store.Problem, error) {
	cands, err := o.Select(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]store.Problem, len(cands))
	for i, c := range cands {
		out[i] = c.Problem
	}
	return out, nil
}

// difficultyRange uses the catalog range, or the span of the candidates
// for a subskill the catalog does not know.
func (o *Optimizer) difficultyRange(cat *curriculum.Catalog, subskillID string, problems []store.Problem) curriculum.DifficultyRange {
	if ss, ok := cat.Subskill(subskillID); ok {
		return ss.Difficulty
	}
	lo, hi := problems[0].Difficulty, problems[0].Difficulty
	for _, p := range problems[1:] {
		lo = min(lo, p.Difficulty)
		hi = max(hi, p.Difficulty)
	}
	o.log.Warn("subskill missing from catalog, using candidate difficulty span", "subskill", subskillID)
	return curriculum.DifficultyRange{Start: lo, Target: (lo + hi) / 2, End: hi}
}
