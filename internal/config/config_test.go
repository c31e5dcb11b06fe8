package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Engine.MasteryThreshold)
	assert.Equal(t, 0.6, cfg.Engine.ReadinessThreshold)
	assert.Equal(t, 0.85, cfg.Engine.TargetSuccessRate)
	assert.Equal(t, 10*time.Second, cfg.Engine.RequestTimeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "claude-haiku", cfg.LLM.Anthropic.Model)
	assert.Equal(t, "", cfg.LLM.Provider)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinderpath.yaml")
	content := `
database:
  path: /tmp/kp.db
engine:
  request_timeout: 3s
redis:
  addr: localhost:6379
llm:
  provider: mock
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("KINDERPATH_REDIS_ADDR", "redis:6380")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/kp.db", cfg.Database.Path)
	assert.Equal(t, 3*time.Second, cfg.Engine.RequestTimeout)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr, "env overrides file")
	assert.Equal(t, "mock", cfg.LLM.Provider)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Engine.MasteryThreshold = 1.5
	cfg.LLM.Provider = "carrier-pigeon"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mastery_threshold")
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestRetryConfig_Policy(t *testing.T) {
	p := RetryConfig{MaxAttempts: 5, BaseDelay: time.Second}.Policy()
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, time.Second, p.BaseDelay)
	assert.Equal(t, 2*time.Second, p.MaxDelay, "unset fields keep defaults")
	assert.Equal(t, 2.0, p.Multiplier)
}
