package engine

import (
	"context"
	"fmt"

	"github.com/abhisek/kinderpath/internal/config"
	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/graphsync"
	"github.com/abhisek/kinderpath/internal/llm"
	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/problemcache"
	"github.com/abhisek/kinderpath/internal/problemgen"
	"github.com/abhisek/kinderpath/internal/skillgraph"
	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/telemetry"
)

// Open builds an Engine from configuration: the SQLite store, the
// curriculum, the persisted prerequisite graph and the optional Redis,
// LLM and Neo4j collaborators. Redis and Neo4j connection failures are
// logged and the engine runs without them; an LLM provider that is
// configured but cannot be built is an error.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, m *telemetry.Metrics) (*Engine, error) {
	log = logger.OrNop(log)

	dbPath := cfg.Database.Path
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	} else if err := store.EnsureDir(dbPath); err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath,
		store.WithRetry(cfg.Retry.Policy()),
		store.WithLogger(log),
		store.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	closers := []func(context.Context) error{func(context.Context) error { return st.Close() }}
	fail := func(err error) (*Engine, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i](ctx)
		}
		return nil, err
	}

	cat, f, err := curriculum.Load(cfg.Curriculum.File)
	if err != nil {
		return fail(err)
	}
	gr, err := loadGraph(ctx, st.Edges(), cat, f)
	if err != nil {
		return fail(err)
	}

	cacheOpts := []problemcache.Option{problemcache.WithLogger(log), problemcache.WithMetrics(m)}
	rdb, err := problemcache.NewRedisClient(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Warn("redis unavailable, serving problems from the store only", "addr", cfg.Redis.Addr, "error", err)
	case rdb != nil:
		cacheOpts = append(cacheOpts, problemcache.WithRedis(rdb, cfg.Redis.TTL))
		closers = append(closers, func(context.Context) error { return rdb.Close() })
	}

	var gen problemgen.Generator
	llmCfg := llm.FromConfig(cfg.LLM)
	if llmCfg.Provider == "" {
		if found, ok := llm.DiscoverConfig(); ok {
			found.Timeout = llmCfg.Timeout
			llmCfg = found
			log.Info("llm provider discovered from environment", "provider", found.Provider)
		}
	}
	if llmCfg.Provider != "" {
		provider, err := llm.NewProvider(ctx, llmCfg, st.Events(), log, m)
		if err != nil {
			return fail(err)
		}
		gen = problemgen.New(provider, problemgen.DefaultConfig(), log)
	}

	syncer, err := graphsync.New(ctx, cfg.Neo4j, log)
	if err != nil {
		log.Warn("neo4j unavailable, graph sync disabled", "uri", cfg.Neo4j.URI, "error", err)
		syncer = nil
	} else {
		closers = append(closers, syncer.Close)
	}

	e := New(Deps{
		World:           skillgraph.NewHolder(cat, gr),
		Attempts:        st.Attempts(),
		Reviews:         st.Reviews(),
		Problems:        st.Problems(),
		Edges:           st.Edges(),
		Cache:           problemcache.New(st.Problems(), cacheOpts...),
		Generator:       gen,
		GenerateTimeout: llmCfg.Timeout,
		Syncer:          syncer,
		Logger:          log,
		Metrics:         m,
	}, cfg.Engine)
	e.closers = closers

	log.Info("engine ready",
		"db", dbPath, "curriculum", cat.Version(),
		"edges", len(gr.AllEdges()), "generation", gen != nil, "graph_sync", syncer.Enabled())
	return e, nil
}

// loadGraph returns the persisted graph. An empty edge store is seeded
// from the curriculum file's prerequisites.
func loadGraph(ctx context.Context, edges store.EdgeRepo, cat *curriculum.Catalog, f *curriculum.File) (*skillgraph.Graph, error) {
	stored, err := edges.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prerequisite graph: %w", err)
	}
	if len(stored) == 0 && len(f.Prerequisites) > 0 {
		stored = skillgraph.FromSpecs(f.Prerequisites)
		if err := skillgraph.Validate(stored); err != nil {
			return nil, err
		}
		if err := edges.Replace(ctx, stored); err != nil {
			return nil, fmt.Errorf("seed prerequisite graph: %w", err)
		}
	}
	if err := skillgraph.CheckCatalog(stored, cat); err != nil {
		return nil, err
	}
	return skillgraph.New(stored)
}
