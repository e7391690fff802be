// Package results persists test run outcomes to MySQL for reporting
// across executions. The store is optional: the harness only records
// when a DSN is configured.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a test run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunPassed  RunStatus = "passed"
	RunFailed  RunStatus = "failed"
)

// Run is a single invocation of the suite.
type Run struct {
	ID          string
	Environment string
	Browser     string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt sql.NullTime
	Passed      int
	Failed      int
	Skipped     int
}

// TestResult is the outcome of one test within a run.
type TestResult struct {
	ID             string
	RunID          string
	Name           string
	Status         string
	Duration       time.Duration
	ErrorMessage   string
	ScreenshotPath string
	ExecutedAt     time.Time
}

// Store wraps the results database connection.
type Store struct {
	conn *sql.DB
}

// Open connects to the results database and verifies the connection.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the results tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS test_runs (
			id VARCHAR(36) PRIMARY KEY,
			environment VARCHAR(64) NOT NULL,
			browser VARCHAR(32) NOT NULL,
			status VARCHAR(16) NOT NULL,
			started_at DATETIME NOT NULL,
			completed_at DATETIME NULL,
			passed INT NOT NULL DEFAULT 0,
			failed INT NOT NULL DEFAULT 0,
			skipped INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS test_results (
			id VARCHAR(36) PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			error_message TEXT,
			screenshot_path VARCHAR(512),
			executed_at DATETIME NOT NULL,
			INDEX idx_results_run (run_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// RecordRun inserts a new run in the running state and returns its ID.
func (s *Store) RecordRun(ctx context.Context, environment, browser string) (string, error) {
	query := `
		INSERT INTO test_runs (id, environment, browser, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`

	id := uuid.New().String()
	_, err := s.conn.ExecContext(ctx, query, id, environment, browser, RunRunning, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run complete with its final status and counts.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, passed, failed, skipped int) error {
	query := `
		UPDATE test_runs
		SET status = ?, completed_at = NOW(), passed = ?, failed = ?, skipped = ?
		WHERE id = ?
	`

	_, err := s.conn.ExecContext(ctx, query, status, passed, failed, skipped, runID)
	return err
}

// RecordTest inserts the outcome of a single test.
func (s *Store) RecordTest(ctx context.Context, res *TestResult) error {
	query := `
		INSERT INTO test_results (id, run_id, name, status, duration_ms, error_message, screenshot_path, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.ExecutedAt.IsZero() {
		res.ExecutedAt = time.Now()
	}

	_, err := s.conn.ExecContext(ctx, query,
		res.ID,
		res.RunID,
		res.Name,
		res.Status,
		res.Duration.Milliseconds(),
		res.ErrorMessage,
		res.ScreenshotPath,
		res.ExecutedAt,
	)

	return err
}

// ListRuns retrieves the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, environment, browser, status, started_at, completed_at, passed, failed, skipped
		FROM test_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		err := rows.Scan(
			&run.ID,
			&run.Environment,
			&run.Browser,
			&run.Status,
			&run.StartedAt,
			&run.CompletedAt,
			&run.Passed,
			&run.Failed,
			&run.Skipped,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// RunSummary retrieves one run by ID. Returns nil without error when the
// run does not exist.
func (s *Store) RunSummary(ctx context.Context, runID string) (*Run, error) {
	query := `
		SELECT id, environment, browser, status, started_at, completed_at, passed, failed, skipped
		FROM test_runs
		WHERE id = ?
	`

	var run Run
	err := s.conn.QueryRowContext(ctx, query, runID).Scan(
		&run.ID,
		&run.Environment,
		&run.Browser,
		&run.Status,
		&run.StartedAt,
		&run.CompletedAt,
		&run.Passed,
		&run.Failed,
		&run.Skipped,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// RunResults retrieves the per-test results for a run in execution order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]TestResult, error) {
	query := `
		SELECT id, run_id, name, status, duration_ms, error_message, screenshot_path, executed_at
		FROM test_results
		WHERE run_id = ?
		ORDER BY executed_at
	`

	rows, err := s.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	var results []TestResult
	for rows.Next() {
		var res TestResult
		var durationMS int64
		err := rows.Scan(
			&res.ID,
			&res.RunID,
			&res.Name,
			&res.Status,
			&durationMS,
			&res.ErrorMessage,
			&res.ScreenshotPath,
			&res.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		res.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, res)
	}

	return results, rows.Err()
}
