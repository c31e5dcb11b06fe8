package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/abhisek/kinderpath/internal/store"
)

// ImportResult summarizes an attempt import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Clamped  int      `json:"clamped"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type importRecord struct {
	StudentID  string    `json:"student_id"`
	SubskillID string    `json:"subskill_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ImportAttempts records newline-delimited JSON attempts. Each line needs
// student_id and subskill_id; the score may be a number, a numeric string,
// or nested under "evaluation". Out-of-range scores are clamped. Lines that
// cannot be recorded are skipped and reported; a store failure aborts the
// import.
func (e *Engine) ImportAttempts(ctx context.Context, r io.Reader) (res ImportResult, err error) {
	defer func(t time.Time) { e.observe("import_attempts", t, err) }(time.Now())

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	skip := func(format string, args ...any) {
		res.Skipped++
		res.Errors = append(res.Errors, fmt.Sprintf("line %d: ", line)+fmt.Sprintf(format, args...))
	}

	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec importRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			skip("%v", err)
			continue
		}
		var fields map[string]any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			skip("%v", err)
			continue
		}
		score, clamped, err := store.ParseScore(fields)
		if err != nil {
			skip("%v", err)
			continue
		}
		if clamped {
			res.Clamped++
			e.metrics.Clamped("import_score")
			e.log.Warn("clamped imported score", "line", line, "student", rec.StudentID, "subskill", rec.SubskillID)
		}

		a := store.Attempt{StudentID: rec.StudentID, SubskillID: rec.SubskillID, Score: score, Timestamp: rec.Timestamp}
		if err := e.RecordAttempt(ctx, &a); err != nil {
			if store.IsUnavailable(err) {
				return res, fmt.Errorf("import attempts: line %d: %w", line, err)
			}
			skip("%v", err)
			continue
		}
		res.Imported++
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("import attempts: %w", err)
	}
	return res, nil
}
