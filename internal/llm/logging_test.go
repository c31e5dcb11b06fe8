package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/telemetry"
)

type recordingEvents struct {
	mu   sync.Mutex
	data []store.LLMRequestEventData
	err  error
}

func (r *recordingEvents) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, d)
	return r.err
}

func (r *recordingEvents) LLMRequestCount(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data), nil
}

func TestLoggingProvider(t *testing.T) {
	events := &recordingEvents{}
	m := telemetry.New(prometheus.NewRegistry())
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 4}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, "mock", events, nil, m)
	ctx := WithPurpose(context.Background(), "problem-gen")

	_, err := p.Generate(ctx, Request{})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	require.Len(t, events.data, 2)
	ok := events.data[0]
	assert.True(t, ok.Success)
	assert.Equal(t, "problem-gen", ok.Purpose)
	assert.Equal(t, "mock", ok.Provider)
	assert.Equal(t, 12, ok.InputTokens)
	assert.False(t, events.data[1].Success)
	assert.Equal(t, "boom", events.data[1].ErrorMessage)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequests.WithLabelValues("mock", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequests.WithLabelValues("mock", "error")))
}

func TestLoggingProvider_EventFailureIgnored(t *testing.T) {
	events := &recordingEvents{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), "mock", events, nil, nil)
	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}
