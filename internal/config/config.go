// Package config loads service configuration from an optional YAML file and
// KINDERPATH_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/kinderpath/internal/retry"
)

// EnvPrefix is prepended to every environment variable the config reads,
// e.g. KINDERPATH_REDIS_ADDR for redis.addr.
const EnvPrefix = "KINDERPATH"

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Curriculum CurriculumConfig `mapstructure:"curriculum"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type DatabaseConfig struct {
	// Path is the SQLite file. Empty means the default XDG location.
	Path string `mapstructure:"path"`
}

type CurriculumConfig struct {
	// File is a curriculum YAML file. Empty means the embedded seed.
	File string `mapstructure:"file"`
}

type EngineConfig struct {
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	MasteryThreshold   float64       `mapstructure:"mastery_threshold"`
	ReadinessThreshold float64       `mapstructure:"readiness_threshold"`
	TargetSuccessRate  float64       `mapstructure:"target_success_rate"`
	DifficultyStep     float64       `mapstructure:"difficulty_step"`
	// GenerateBatch is how many problems are generated on a cold cache.
	GenerateBatch int `mapstructure:"generate_batch"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// Policy converts the section into the policy applied to store calls.
func (c RetryConfig) Policy() retry.Policy {
	p := retry.DefaultPolicy()
	if c.MaxAttempts > 0 {
		p.MaxAttempts = c.MaxAttempts
	}
	if c.BaseDelay > 0 {
		p.BaseDelay = c.BaseDelay
	}
	if c.MaxDelay > 0 {
		p.MaxDelay = c.MaxDelay
	}
	if c.Multiplier > 0 {
		p.Multiplier = c.Multiplier
	}
	return p
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type LLMConfig struct {
	// Provider: "anthropic", "openai", "gemini", "openrouter", "mock" or "" (disabled).
	Provider   string         `mapstructure:"provider"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
	Timeout    time.Duration  `mapstructure:"timeout"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "")
	v.SetDefault("curriculum.file", "")

	v.SetDefault("engine.request_timeout", 10*time.Second)
	v.SetDefault("engine.mastery_threshold", 0.8)
	v.SetDefault("engine.readiness_threshold", 0.6)
	v.SetDefault("engine.target_success_rate", 0.85)
	v.SetDefault("engine.difficulty_step", 1.0)
	v.SetDefault("engine.generate_batch", 5)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", 100*time.Millisecond)
	v.SetDefault("retry.max_delay", 2*time.Second)
	v.SetDefault("retry.multiplier", 2.0)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 6*time.Hour)

	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", 30*time.Second)
	for _, p := range []string{"anthropic", "openai", "gemini", "openrouter"} {
		v.SetDefault("llm."+p+".api_key", "")
		v.SetDefault("llm."+p+".base_url", "")
	}
	v.SetDefault("llm.anthropic.model", "claude-haiku")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.gemini.model", "gemini-flash")
	v.SetDefault("llm.openrouter.model", "google/gemini-2.0-flash-exp")
	v.SetDefault("llm.openrouter.base_url", "https://openrouter.ai/api/v1")

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges that would otherwise surface as confusing engine
// behavior later.
func (c *Config) Validate() error {
	var errs []string
	inUnit := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %v", name, v))
		}
	}
	inUnit("engine.mastery_threshold", c.Engine.MasteryThreshold)
	inUnit("engine.readiness_threshold", c.Engine.ReadinessThreshold)
	inUnit("engine.target_success_rate", c.Engine.TargetSuccessRate)
	if c.Engine.RequestTimeout < 0 {
		errs = append(errs, "engine.request_timeout must be >= 0")
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("retry.max_attempts must be >= 1, got %d", c.Retry.MaxAttempts))
	}
	switch c.LLM.Provider {
	case "", "anthropic", "openai", "gemini", "openrouter", "mock":
	default:
		errs = append(errs, fmt.Sprintf("unknown llm.provider %q", c.LLM.Provider))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
