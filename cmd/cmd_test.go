package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/unlock"
)

func runCLI(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "kinderpath %v", args)
	return out.Bytes()
}

func TestCLI_RecordThenCheck(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kp.db")

	var a store.Attempt
	out := runCLI(t, "attempt", "record", "kid", "count-objects-5", "9", "--db", db, "--json", "--log-level", "error")
	require.NoError(t, json.Unmarshal(out, &a))
	assert.Equal(t, "math", a.Subject)
	assert.Equal(t, "count-to-10", a.SkillID)
	assert.InDelta(t, 9.0, a.Score, 1e-9)

	var res unlock.Result
	out = runCLI(t, "check", "kid", "add-objects-5", "--type", "subskill", "--db", db, "--json", "--log-level", "error")
	require.NoError(t, json.Unmarshal(out, &res))
	assert.True(t, res.Unlocked)
	require.Len(t, res.Prerequisites, 1)
}

func TestCLI_GraphExportYAML(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kp.db")

	out := runCLI(t, "graph", "export", "--format", "yaml", "--subject", "literacy", "--db", db, "--log-level", "error")
	assert.Contains(t, string(out), "prerequisites:")
	assert.Contains(t, string(out), "prerequisite: sight-words-set-1")
	assert.NotContains(t, string(out), "count-objects-5")
}

func TestCLI_CurriculumValidate(t *testing.T) {
	out := runCLI(t, "curriculum", "validate", filepath.Join("..", "internal", "curriculum", "seed.yaml"))
	assert.Contains(t, string(out), "v1.0.0 OK")
}

func TestCLI_ReviewNeedsScoreOrAnswer(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"review", "record", "kid", "p1", "--db", filepath.Join(t.TempDir(), "kp.db")})
	assert.ErrorContains(t, rootCmd.Execute(), "exactly one of --score or --answer")
}
