// Package graphsync mirrors the exported learning graph into Neo4j for
// visualization and ad-hoc Cypher queries.
package graphsync

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/abhisek/kinderpath/internal/config"
	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/skillgraph"
)

const connectTimeout = 10 * time.Second

// Syncer writes learning graphs to Neo4j. A Syncer without a driver is
// valid and does nothing.
type Syncer struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

// Result summarizes one Sync.
type Result struct {
	Nodes   int  `json:"nodes"`
	Edges   int  `json:"edges"`
	Pruned  int  `json:"pruned"`
	Skipped bool `json:"skipped,omitempty"`
}

// New connects to cfg.URI. An empty URI yields a disabled Syncer.
func New(ctx context.Context, cfg config.Neo4jConfig, log *logger.Logger) (*Syncer, error) {
	s := &Syncer{database: cfg.Database, log: logger.OrNop(log).With("component", "graphsync")}
	if cfg.URI == "" {
		return s, nil
	}
	user := cfg.User
	if user == "" {
		user = "neo4j"
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(user, cfg.Password, ""), func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = 10
		c.SocketConnectTimeout = connectTimeout
	})
	if err != nil {
		return nil, fmt.Errorf("graphsync: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graphsync: verify connectivity: %w", err)
	}
	s.driver = driver
	return s, nil
}

func (s *Syncer) Enabled() bool { return s != nil && s.driver != nil }

func (s *Syncer) Close(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	return err
}

// Sync upserts the graph's nodes as (:Entity {id}) and its edges as
// [:UNLOCKS]. UNLOCKS edges leaving a synced node that are absent from g
// are removed, so re-syncing after a curriculum edit converges.
func (s *Syncer) Sync(ctx context.Context, g skillgraph.LearningGraph) (Result, error) {
	if !s.Enabled() {
		return Result{Skipped: true}, nil
	}
	p := buildParams(g, time.Now().UTC())

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	// Best effort; restricted users may not create constraints.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT entity_id_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE`, nil); err != nil {
		s.log.Warn("neo4j schema init failed (continuing)", "error", err)
	} else {
		_, _ = res.Consume(ctx)
	}

	pruned, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(p.nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (e:Entity {id: n.id})
SET e += n
`, map[string]any{"nodes": p.nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(p.rels) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (a:Entity {id: r.from_id})
MATCH (b:Entity {id: r.to_id})
MERGE (a)-[u:UNLOCKS]->(b)
SET u.threshold = r.threshold,
    u.draft = r.draft,
    u.synced_at = r.synced_at
`, map[string]any{"rels": p.rels})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		res, err := tx.Run(ctx, `
MATCH (a:Entity)-[u:UNLOCKS]->()
WHERE a.id IN $ids AND u.synced_at <> $now
DELETE u
RETURN count(u) AS pruned
`, map[string]any{"ids": p.ids, "now": p.now})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, _ := rec.Get("pruned")
		return n, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("graphsync: write graph: %w", err)
	}

	out := Result{Nodes: len(p.nodes), Edges: len(p.rels)}
	if n, ok := pruned.(int64); ok {
		out.Pruned = int(n)
	}
	s.log.Info("synced learning graph", "nodes", out.Nodes, "edges", out.Edges, "pruned", out.Pruned,
		"curriculum_version", g.Metadata.CurriculumVersion)
	return out, nil
}

type params struct {
	nodes []map[string]any
	rels  []map[string]any
	ids   []string
	now   string
}

func buildParams(g skillgraph.LearningGraph, now time.Time) params {
	p := params{now: now.Format(time.RFC3339Nano)}
	for _, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		p.nodes = append(p.nodes, map[string]any{
			"id":                 n.ID,
			"type":               string(n.Type),
			"subject":            n.Subject,
			"description":        n.Description,
			"curriculum_version": g.Metadata.CurriculumVersion,
			"synced_at":          p.now,
		})
		p.ids = append(p.ids, n.ID)
	}
	for _, e := range g.Edges {
		p.rels = append(p.rels, map[string]any{
			"from_id":   e.Prerequisite.ID,
			"to_id":     e.Unlocks.ID,
			"threshold": e.Threshold,
			"draft":     e.Draft,
			"synced_at": p.now,
		})
	}
	return p
}
