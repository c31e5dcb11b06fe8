package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kinderpath/internal/config"
)

func problemSchema() *Schema {
	return &Schema{
		Name: "test-problem",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":   map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
				"format":     map[string]any{"type": "string", "enum": []any{"choice", "count"}},
			},
			"required":             []any{"question", "difficulty"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"question":"How many apples?","difficulty":2,"format":"count"}`, false},
		{"optional omitted", `{"question":"Which is bigger?","difficulty":3}`, false},
		{"missing required", `{"question":"Which is bigger?"}`, true},
		{"out of range", `{"question":"q","difficulty":11}`, true},
		{"bad enum", `{"question":"q","difficulty":1,"format":"essay"}`, true},
		{"extra field", `{"question":"q","difficulty":1,"hint":"x"}`, true},
		{"not json", `how many apples`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(problemSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		})
	}
	assert.NoError(t, validateResponse(nil, json.RawMessage(`anything`)))
}

func TestMockProvider(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"question":"a","difficulty":1}`)})
	mock.Func = func(req Request) (json.RawMessage, error) {
		return json.RawMessage(`{"question":"` + req.Messages[0].Content + `","difficulty":2}`), nil
	}

	req := Request{Schema: problemSchema(), Messages: []Message{{Role: RoleUser, Content: "b"}}}
	first, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"question":"a","difficulty":1}`, string(first.Content))

	second, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"question":"b","difficulty":2}`, string(second.Content))
	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, "mock", mock.ModelID())
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestMockProvider_SchemaChecked(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"question":"a"}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: problemSchema()})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestPurposeContext(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "problem-gen", PurposeFrom(WithPurpose(context.Background(), "problem-gen")))
}

func TestClassify(t *testing.T) {
	base := errors.New("boom")

	var rl *ErrRateLimit
	assert.ErrorAs(t, classify(http.StatusTooManyRequests, base), &rl)

	var rej *ErrRejected
	assert.ErrorAs(t, classify(http.StatusUnauthorized, base), &rej)
	assert.False(t, retryable(classify(http.StatusUnauthorized, base)))

	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, classify(http.StatusBadGateway, base), &unavail)
	assert.ErrorAs(t, classify(0, base), &unavail)
	assert.True(t, retryable(classify(0, base)))
	assert.False(t, retryable(&ErrMaxTokensExceeded{}))
	assert.ErrorIs(t, classify(0, base), base)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: config.ProviderConfig{APIKey: "sk"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: config.ProviderConfig{APIKey: "k"}}, false},
		{"mock", Config{Provider: "mock"}, false},
		{"unknown", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.LLMConfig{
		Provider:   "openrouter",
		OpenRouter: config.ProviderConfig{APIKey: "or-key"},
		Anthropic:  config.ProviderConfig{Model: "claude-sonnet"},
	})
	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "or-key", cfg.OpenRouter.APIKey)
	assert.Equal(t, defaultOpenRouterBaseURL, cfg.OpenRouter.BaseURL)
	assert.Equal(t, "claude-sonnet", cfg.Anthropic.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, DefaultConfig().Timeout, cfg.Timeout)
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	_, ok := DiscoverConfig()
	assert.False(t, ok)

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "a-key", cfg.Anthropic.APIKey)
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	cfg.Provider = "openai"
	_, err = NewProvider(context.Background(), cfg, nil, nil, nil)
	assert.Error(t, err)
}
