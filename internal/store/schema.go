package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableAttempts    = "attempts"
	tableReviews     = "reviews"
	tableProblems    = "problems"
	tableEdges       = "prerequisite_edges"
	tableLLMRequests = "llm_requests"
)

// Timestamps are stored as unix nanoseconds so that ordering in SQL matches
// time ordering.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		sequence INTEGER NOT NULL,
		student_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		skill_id TEXT NOT NULL,
		subskill_id TEXT NOT NULL,
		score REAL NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_student_subskill ON attempts (student_id, subskill_id)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		sequence INTEGER NOT NULL,
		student_id TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		score REAL NOT NULL,
		reviewed_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_student_problem ON reviews (student_id, problem_id)`,
	`CREATE TABLE IF NOT EXISTS problems (
		id TEXT PRIMARY KEY,
		sequence INTEGER NOT NULL,
		subject TEXT NOT NULL,
		unit_id TEXT NOT NULL DEFAULT '',
		skill_id TEXT NOT NULL,
		subskill_id TEXT NOT NULL,
		difficulty REAL NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS problems_key ON problems (subject, skill_id, subskill_id)`,
	`CREATE TABLE IF NOT EXISTS prerequisite_edges (
		prerequisite_id TEXT NOT NULL,
		prerequisite_type TEXT NOT NULL,
		unlocks_id TEXT NOT NULL,
		unlocks_type TEXT NOT NULL,
		threshold REAL NOT NULL,
		is_draft INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (prerequisite_id, prerequisite_type, unlocks_id, unlocks_type)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
