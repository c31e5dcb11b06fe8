package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/abhisek/kinderpath/internal/config"
)

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func openAIServer(t *testing.T, h http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := NewOpenAIProvider(config.ProviderConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1767225600,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func userPrompt() Request {
	return Request{
		System:    "You write kindergarten practice problems.",
		Messages:  []Message{{Role: RoleUser, Content: "One counting problem."}},
		MaxTokens: 256,
	}
}

func TestOpenAIProvider(t *testing.T) {
	var got map[string]any
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		jsonHandler(http.StatusOK, chatCompletion(`{"question":"How many ducks?","difficulty":2}`, "stop"))(w, r)
	})

	req := userPrompt()
	req.Schema = problemSchema()
	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.NotNil(t, got["response_format"])
}

func TestOpenAIProvider_Errors(t *testing.T) {
	apiErr := func(typ string) map[string]any {
		return map[string]any{"error": map[string]any{"type": typ, "message": typ}}
	}

	var rl *ErrRateLimit
	_, err := openAIServer(t, jsonHandler(http.StatusTooManyRequests, apiErr("tokens"))).Generate(context.Background(), userPrompt())
	assert.ErrorAs(t, err, &rl)

	var unavail *ErrProviderUnavailable
	_, err = openAIServer(t, jsonHandler(http.StatusInternalServerError, apiErr("server_error"))).Generate(context.Background(), userPrompt())
	assert.ErrorAs(t, err, &unavail)

	var rej *ErrRejected
	_, err = openAIServer(t, jsonHandler(http.StatusUnauthorized, apiErr("invalid_api_key"))).Generate(context.Background(), userPrompt())
	assert.ErrorAs(t, err, &rej)
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	p := openAIServer(t, jsonHandler(http.StatusOK, chatCompletion(`{"question":"How m`, "length")))
	_, err := p.Generate(context.Background(), userPrompt())
	var mt *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &mt)
}

func TestOpenAIProvider_SchemaMismatch(t *testing.T) {
	p := openAIServer(t, jsonHandler(http.StatusOK, chatCompletion(`{"question":"How many ducks?"}`, "stop")))
	req := userPrompt()
	req.Schema = problemSchema()
	_, err := p.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(config.ProviderConfig{})
	assert.Error(t, err)

	p, err := NewOpenRouterProvider(config.ProviderConfig{APIKey: "k", Model: "meta/llama"})
	require.NoError(t, err)
	assert.Equal(t, "meta/llama", p.ModelID())
}

func TestAnthropicProvider(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": `{"question":"Which shape is round?","difficulty":1}`}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(config.ProviderConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	resp, err := p.Generate(context.Background(), userPrompt())
	require.NoError(t, err)
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)
}

func TestAnthropicProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusInternalServerError, map[string]any{
		"type":  "error",
		"error": map[string]any{"type": "api_error", "message": "Internal server error"},
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(config.ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), userPrompt())
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "gpt-4.1", resolveModel("gpt-4.1", openaiModels))
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(problemSchema().Definition)
	assert.Equal(t, genai.TypeObject, s.Type)
	require.Contains(t, s.Properties, "difficulty")
	assert.Equal(t, genai.TypeInteger, s.Properties["difficulty"].Type)
	assert.Equal(t, []string{"choice", "count"}, s.Properties["format"].Enum)
	assert.Equal(t, []string{"question", "difficulty"}, s.Required)

	list := geminiSchema(map[string]any{"type": "array", "items": map[string]any{"type": "boolean"}})
	assert.Equal(t, genai.TypeArray, list.Type)
	assert.Equal(t, genai.TypeBoolean, list.Items.Type)
}
