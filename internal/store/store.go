// Package store persists attempts, reviews, generated problems and
// prerequisite edges in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/retry"
	"github.com/abhisek/kinderpath/internal/telemetry"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	seq     *sequenceCounter
	policy  retry.Policy
	log     *logger.Logger
	metrics *telemetry.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithRetry sets the policy applied to every database call.
func WithRetry(p retry.Policy) Option {
	return func(s *Store) { s.policy = p }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = logger.OrNop(l) }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:     db,
		drv:    entsql.OpenDB(dialect.SQLite, db),
		seq:    seq,
		policy: retry.DefaultPolicy(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) Attempts() AttemptRepo {
	return &attemptRepo{s: s}
}

func (s *Store) Reviews() ReviewRepo {
	return &reviewRepo{s: s}
}

func (s *Store) Problems() ProblemRepo {
	return &problemRepo{s: s}
}

func (s *Store) Edges() EdgeRepo {
	return &edgeRepo{s: s}
}

func (s *Store) Events() EventRepo {
	return &eventRepo{s: s}
}

// builder returns the SQLite statement builder.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// do runs fn under the store's retry policy. A failure that survives the
// policy is reported as an UnavailableError.
func (s *Store) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := retry.Do(ctx, s.policy, fn)
	if err == nil {
		return nil
	}
	s.log.Warn("store call failed", "op", op, "error", err)
	return &UnavailableError{Op: op, Err: err}
}

func (s *Store) query(ctx context.Context, op, q string, args []any, scan func(rows *entsql.Rows) error) error {
	return s.do(ctx, op, func(ctx context.Context) error {
		var rows entsql.Rows
		if err := s.drv.Query(ctx, q, args, &rows); err != nil {
			return err
		}
		defer rows.Close()
		if err := scan(&rows); err != nil {
			return err
		}
		return rows.Err()
	})
}

func (s *Store) exec(ctx context.Context, op, q string, args []any) error {
	return s.do(ctx, op, func(ctx context.Context) error {
		return s.drv.Exec(ctx, q, args, nil)
	})
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. KINDERPATH_DB environment variable
// 2. $XDG_DATA_HOME/kinderpath/kinderpath.db
// 3. ~/.local/share/kinderpath/kinderpath.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("KINDERPATH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "kinderpath", "kinderpath.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
