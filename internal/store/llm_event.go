package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by the global sequence counter.
type eventRepo struct {
	s *Store
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.s.seq.Next(ctx)
	if err != nil {
		return &UnavailableError{Op: "events.llm_request", Err: err}
	}

	q, args := builder().Insert(tableLLMRequests).
		Columns("sequence", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "created_at").
		Values(seqNum, data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, time.Now().UTC().UnixNano()).
		Query()
	return r.s.exec(ctx, "events.llm_request", q, args)
}

func (r *eventRepo) LLMRequestCount(ctx context.Context) (int, error) {
	q, args := builder().
		Select(entsql.Count("*")).
		From(entsql.Table(tableLLMRequests)).
		Query()

	var n int
	err := r.s.query(ctx, "events.llm_count", q, args, func(rows *entsql.Rows) error {
		if rows.Next() {
			return rows.Scan(&n)
		}
		return nil
	})
	return n, err
}
