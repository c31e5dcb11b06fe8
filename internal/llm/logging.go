package llm

import (
	"context"
	"time"

	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/telemetry"
)

// LoggingProvider records every call as an llm_requests event, a log line
// and a metric sample.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *logger.Logger
	metrics  *telemetry.Metrics
}

// WithLogging wraps p. events may be nil.
func WithLogging(p Provider, provider string, events store.EventRepo, log *logger.Logger, m *telemetry.Metrics) Provider {
	return &LoggingProvider{inner: p, provider: provider, events: events, log: logger.OrNop(log), metrics: m}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", "provider", l.provider, "model", data.Model, "purpose", data.Purpose, "error", err)
	} else {
		l.log.Debug("llm request", "provider", l.provider, "model", data.Model, "purpose", data.Purpose,
			"latency_ms", data.LatencyMs, "input_tokens", data.InputTokens, "output_tokens", data.OutputTokens)
	}
	l.metrics.LLMRequest(l.provider, err == nil)

	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.Warn("failed to record llm request event", "error", logErr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }
