package graphsync

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kinderpath/internal/config"
	"github.com/abhisek/kinderpath/internal/curriculum"
	"github.com/abhisek/kinderpath/internal/skillgraph"
)

func seedGraph(t *testing.T, subject string) skillgraph.LearningGraph {
	t.Helper()
	cat, f, err := curriculum.LoadSeed()
	require.NoError(t, err)
	gr, err := skillgraph.New(skillgraph.FromSpecs(f.Prerequisites))
	require.NoError(t, err)
	return gr.Export(cat, skillgraph.ExportOptions{Subject: subject})
}

func TestBuildParams(t *testing.T) {
	g := seedGraph(t, "literacy")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p := buildParams(g, now)

	assert.Len(t, p.nodes, len(g.Nodes))
	assert.Len(t, p.rels, len(g.Edges))
	assert.Len(t, p.ids, len(g.Nodes))
	assert.Equal(t, "2026-05-01T12:00:00Z", p.now)

	first := p.nodes[0]
	assert.Equal(t, g.Nodes[0].ID, first["id"])
	assert.Equal(t, "v1.0.0", first["curriculum_version"])
	assert.Equal(t, p.now, p.rels[0]["synced_at"])
	assert.Equal(t, g.Edges[0].Threshold, p.rels[0]["threshold"])
}

func TestSync_Disabled(t *testing.T) {
	s, err := New(context.Background(), config.Neo4jConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	res, err := s.Sync(context.Background(), seedGraph(t, ""))
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.NoError(t, s.Close(context.Background()))
}

func TestSync_Neo4j(t *testing.T) {
	uri := os.Getenv("KINDERPATH_TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("KINDERPATH_TEST_NEO4J_URI not set")
	}
	ctx := context.Background()
	s, err := New(ctx, config.Neo4jConfig{
		URI:      uri,
		User:     os.Getenv("KINDERPATH_TEST_NEO4J_USER"),
		Password: os.Getenv("KINDERPATH_TEST_NEO4J_PASSWORD"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })

	g := seedGraph(t, "math")
	res, err := s.Sync(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, len(g.Nodes), res.Nodes)
	assert.Equal(t, len(g.Edges), res.Edges)

	// Dropping an edge and re-syncing prunes it.
	g.Edges = g.Edges[1:]
	res, err = s.Sync(ctx, g)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Pruned, 1)
}
