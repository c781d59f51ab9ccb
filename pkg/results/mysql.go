package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"dev/bravebird/login-e2e/pkg/models"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS login_results (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		executed_at DATETIME NOT NULL,
		test_case VARCHAR(255) NOT NULL,
		username VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		result VARCHAR(16) NOT NULL,
		terminal VARCHAR(32) NOT NULL,
		error_message TEXT NOT NULL,
		screenshot_path VARCHAR(1024) NOT NULL,
		INDEX idx_login_results_run (run_id)
	)
`

// MySQLLog mirrors the result log into a MySQL table
type MySQLLog struct {
	conn *sql.DB
}

var _ Sink = (*MySQLLog)(nil)

// NewMySQLLog opens a MySQL connection. parseTime is always enabled so
// ListRun can scan executed_at.
func NewMySQLLog(dsn string) (*MySQLLog, error) {
	dsn, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewMySQLLogWithDB(conn), nil
}

func normalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// NewMySQLLogWithDB wraps an already opened connection
func NewMySQLLogWithDB(conn *sql.DB) *MySQLLog {
	return &MySQLLog{conn: conn}
}

// Prepare creates the results table if needed
func (db *MySQLLog) Prepare(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create login_results table: %w", err)
	}
	return nil
}

// Append inserts one result
func (db *MySQLLog) Append(ctx context.Context, r models.Result) error {
	query := `
		INSERT INTO login_results (run_id, executed_at, test_case, username, password, result, terminal, error_message, screenshot_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.conn.ExecContext(ctx, query,
		r.RunID,
		r.Timestamp,
		r.TestCase,
		r.Username,
		r.Password,
		r.Outcome,
		r.Terminal,
		r.ErrorMessage,
		r.ScreenshotPath,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// ListRun retrieves the results of a run in insertion order
func (db *MySQLLog) ListRun(ctx context.Context, runID string) ([]models.Result, error) {
	query := `
		SELECT run_id, executed_at, test_case, username, password, result, terminal, error_message, screenshot_path
		FROM login_results
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		var r models.Result
		err := rows.Scan(
			&r.RunID,
			&r.Timestamp,
			&r.TestCase,
			&r.Username,
			&r.Password,
			&r.Outcome,
			&r.Terminal,
			&r.ErrorMessage,
			&r.ScreenshotPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Close closes the database connection
func (db *MySQLLog) Close() error {
	return db.conn.Close()
}
