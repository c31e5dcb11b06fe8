// Package engine is the entry point the API layer and the CLI call. It
// binds the curriculum, the prerequisite graph and the stores to the
// proficiency, unlock, ranking, optimizer and analytics components, and
// applies a request deadline, logging and metrics to every operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/kinderpath/internal/analytics"
	"github.com/abhisek/kinderpath/internal/config"
	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/graphsync"
	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/optimizer"
	"github.com/abhisek/kinderpath/internal/problemcache"
	"github.com/abhisek/kinderpath/internal/problemgen"
	"github.com/abhisek/kinderpath/internal/proficiency"
	"github.com/abhisek/kinderpath/internal/recommend"
	"github.com/abhisek/kinderpath/internal/skillgraph"
	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/telemetry"
	"github.com/abhisek/kinderpath/internal/unlock"
)

// Deps are the collaborators an Engine is built from. World and the four
// repositories are required.
type Deps struct {
	// World publishes the curriculum and prerequisite graph together.
	World    *skillgraph.Holder
	Attempts store.AttemptRepo
	Reviews  store.ReviewRepo
	Problems store.ProblemRepo
	Edges    store.EdgeRepo

	// Cache defaults to a store-only cache over Problems.
	Cache *problemcache.Cache
	// Generator fills cold problem pools. Nil disables generation.
	Generator problemgen.Generator
	// GenerateTimeout bounds one generator call. Zero means 30s.
	GenerateTimeout time.Duration
	// Syncer mirrors the learning graph. Nil or disabled makes sync a no-op.
	Syncer *graphsync.Syncer

	Logger  *logger.Logger
	Metrics *telemetry.Metrics
}

// Engine serves the adaptive-learning operations. It is safe for
// concurrent use.
type Engine struct {
	world    *skillgraph.Holder
	attempts store.AttemptRepo
	reviews  store.ReviewRepo
	problems store.ProblemRepo
	edges    store.EdgeRepo

	calc       *proficiency.Calculator
	unlocks    *unlock.Engine
	ranker     recommend.Ranker
	aggregator *analytics.Aggregator
	policy     optimizer.TargetSuccessPolicy
	opt        *optimizer.Optimizer
	cache      *problemcache.Cache
	gen        problemgen.Generator
	syncer     *graphsync.Syncer

	timeout    time.Duration
	genTimeout time.Duration
	batch      int

	log     *logger.Logger
	metrics *telemetry.Metrics
	closers []func(context.Context) error
}

// New wires an Engine. cfg supplies thresholds and the request deadline;
// zero values fall back to the package defaults.
func New(d Deps, cfg config.EngineConfig) *Engine {
	log := logger.OrNop(d.Logger).With("component", "engine")

	policy := optimizer.DefaultTargetSuccessPolicy(cfg.DifficultyStep)
	if cfg.TargetSuccessRate > 0 {
		policy.TargetRate = cfg.TargetSuccessRate
	}

	cache := d.Cache
	if cache == nil {
		cache = problemcache.New(d.Problems, problemcache.WithLogger(log), problemcache.WithMetrics(d.Metrics))
	}

	genTimeout := d.GenerateTimeout
	if genTimeout <= 0 {
		genTimeout = 30 * time.Second
	}

	batch := cfg.GenerateBatch
	if batch <= 0 {
		batch = problemgen.DefaultConfig().MaxCount / 2
	}

	return &Engine{
		world:    d.World,
		attempts: d.Attempts,
		reviews:  d.Reviews,
		problems: d.Problems,
		edges:    d.Edges,
		calc:     proficiency.NewCalculator(d.Attempts, d.World.Catalogs(), proficiency.Plain),
		unlocks:  unlock.NewEngine(d.World, d.Attempts),
		ranker:   recommend.Ranker{Mastery: cfg.MasteryThreshold},
		aggregator: analytics.NewAggregator(d.Attempts, d.World,
			analytics.WithReadinessThreshold(cfg.ReadinessThreshold)),
		policy: policy,
		opt: optimizer.New(d.Reviews, d.Attempts, d.World.Catalogs(),
			optimizer.WithPolicy(policy), optimizer.WithLogger(log)),
		cache:      cache,
		gen:        d.Generator,
		syncer:     d.Syncer,
		timeout:    cfg.RequestTimeout,
		genTimeout: genTimeout,
		batch:      batch,
		log:        log,
		metrics:    d.Metrics,
	}
}

// Close releases the connections Open created.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Catalog returns the curriculum in effect.
func (e *Engine) Catalog() *curriculum.Catalog { return e.world.Current().Catalog }

// Graph returns the prerequisite graph in effect.
func (e *Engine) Graph() *skillgraph.Graph { return e.world.Load() }

func (e *Engine) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// observe records one finished operation.
func (e *Engine) observe(op string, start time.Time, err error) {
	kind := errorKind(err)
	e.metrics.ObserveOp(op, start, err, kind)
	if err != nil {
		e.log.Warn("operation failed", "op", op, "kind", kind, "error", err)
		return
	}
	e.log.Debug("operation done", "op", op, "elapsed", time.Since(start))
}

func errorKind(err error) string {
	var cycle *skillgraph.CycleError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case store.IsUnavailable(err):
		return "unavailable"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrInvalidScore):
		return "invalid"
	case errors.Is(err, ErrGenerationFailed):
		return "generation"
	case errors.As(err, &cycle):
		return "cycle"
	default:
		return "other"
	}
}

// GetHierarchicalMetrics reports progress for one subject (all when
// empty), optionally limited to attempts within [start, end].
func (e *Engine) GetHierarchicalMetrics(ctx context.Context, studentID, subject string, start, end *time.Time) (rep *analytics.Report, err error) {
	defer func(t time.Time) { e.observe("hierarchical_metrics", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	return e.aggregator.Metrics(ctx, studentID, subject, start, end)
}

// GetRecommendations ranks at most limit entities for the student. When
// the graph yields nothing for the subject, non-mastered subskills from
// the hierarchical report are returned instead.
func (e *Engine) GetRecommendations(ctx context.Context, studentID, subject string, limit int) (recs []recommend.Recommendation, err error) {
	defer func(t time.Time) { e.observe("recommendations", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	if limit <= 0 {
		return []recommend.Recommendation{}, nil
	}
	snap, err := e.calc.Snapshot(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	cur := e.world.Current()
	recs = e.ranker.Rank(cur.Graph, cur.Catalog, snap, subject, limit)
	if len(recs) > 0 {
		return recs, nil
	}

	rep, err := e.aggregator.Metrics(ctx, studentID, subject, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	recs = analytics.FallbackRecommendations(rep, limit)
	e.log.Debug("using fallback recommendations", "student", studentID, "subject", subject, "count", len(recs))
	return recs, nil
}

// SelectOptimalProblems picks req.Count problems from req.Problems.
func (e *Engine) SelectOptimalProblems(ctx context.Context, req optimizer.Request) (out []optimizer.Candidate, err error) {
	defer func(t time.Time) { e.observe("select_problems", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	return e.opt.Select(ctx, req)
}

// CheckPrerequisitesMet evaluates every prerequisite edge of one entity.
func (e *Engine) CheckPrerequisitesMet(ctx context.Context, studentID, entityID string, typ curriculum.EntityType) (res unlock.Result, err error) {
	defer func(t time.Time) { e.observe("check_prerequisites", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	return e.unlocks.Check(ctx, studentID, entityID, typ)
}

// GetUnlockedEntities lists the unlocked entities of a type and subject;
// empty filters match everything.
func (e *Engine) GetUnlockedEntities(ctx context.Context, studentID string, typ curriculum.EntityType, subject string) (refs []skillgraph.Ref, err error) {
	defer func(t time.Time) { e.observe("unlocked_entities", t, err) }(time.Now())
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	refs, err = e.unlocks.UnlockedSet(ctx, studentID, typ, subject)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []skillgraph.Ref{}
	}
	return refs, nil
}

// GetLearningGraph exports the graph for visualization.
func (e *Engine) GetLearningGraph(opts skillgraph.ExportOptions) skillgraph.LearningGraph {
	defer func(t time.Time) { e.observe("learning_graph", t, nil) }(time.Now())
	cur := e.world.Current()
	return cur.Graph.Export(cur.Catalog, opts)
}

// SyncLearningGraph mirrors the exported graph into Neo4j. Without a
// configured Syncer it reports Skipped.
func (e *Engine) SyncLearningGraph(ctx context.Context, opts skillgraph.ExportOptions) (res graphsync.Result, err error) {
	defer func(t time.Time) { e.observe("sync_graph", t, err) }(time.Now())

	if !e.syncer.Enabled() {
		return graphsync.Result{Skipped: true}, nil
	}
	return e.syncer.Sync(ctx, e.GetLearningGraph(opts))
}
