package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/staff-scheduler/internal/persistence"
	_ "modernc.org/sqlite"
)

// ConnectionPool manages SQLite database connections with transaction support.
type ConnectionPool struct {
	db *sql.DB
}

// Open creates a connection pool for the given DSN and verifies connectivity.
func Open(dsn string) (*ConnectionPool, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:staffscheduler.db?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &ConnectionPool{db: db}, nil
}

// DB returns the underlying database handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the connection pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// Migrate applies the schema. Every statement is idempotent, so repeated
// startups are safe.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS staff (
		id          TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL UNIQUE,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		email       TEXT NOT NULL UNIQUE COLLATE NOCASE,
		phone       TEXT NOT NULL DEFAULT '',
		role        TEXT NOT NULL,
		department  TEXT NOT NULL,
		status      TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		task_ref    TEXT NOT NULL UNIQUE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id                  TEXT PRIMARY KEY,
		schedule_type       TEXT NOT NULL CHECK (schedule_type IN ('daily', 'weekly')),
		task_id             TEXT NOT NULL,
		task_title          TEXT NOT NULL,
		task_description    TEXT NOT NULL DEFAULT '',
		task_category       TEXT NOT NULL DEFAULT '',
		priority            TEXT NOT NULL,
		estimated_hours     REAL NOT NULL DEFAULT 0,
		scheduled_date      TEXT NOT NULL,
		end_date            TEXT,
		time_slot           TEXT NOT NULL DEFAULT 'full_day',
		recurrence          TEXT NOT NULL DEFAULT 'once',
		recurrence_end_date TEXT,
		status              TEXT NOT NULL,
		notification_status TEXT NOT NULL DEFAULT '',
		department          TEXT NOT NULL DEFAULT '',
		location            TEXT NOT NULL DEFAULT '',
		notes               TEXT NOT NULL DEFAULT '',
		parent_schedule_id  TEXT,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		schedule_id       TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		staff_id          TEXT NOT NULL,
		position          INTEGER NOT NULL DEFAULT 0,
		staff_name        TEXT NOT NULL,
		staff_email       TEXT NOT NULL,
		status            TEXT NOT NULL DEFAULT 'pending',
		start_time        TEXT,
		end_time          TEXT,
		hours_worked      REAL NOT NULL DEFAULT 0,
		rating            INTEGER NOT NULL DEFAULT 0,
		notes             TEXT NOT NULL DEFAULT '',
		rotated           INTEGER NOT NULL DEFAULT 0,
		notification_sent INTEGER NOT NULL DEFAULT 0,
		email_status      TEXT NOT NULL DEFAULT '',
		email_message_id  TEXT NOT NULL DEFAULT '',
		completed_at      TEXT,
		PRIMARY KEY (schedule_id, staff_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_type_status_date
		ON schedules (schedule_type, status, scheduled_date)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_parent
		ON schedules (parent_schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_staff
		ON assignments (staff_id)`,
}

// TransactionFunc represents a function that executes within a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn within a database transaction, rolling back on
// error or panic and committing otherwise.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// QueryHelper provides helper methods for common query patterns.
type QueryHelper struct {
	pool *ConnectionPool
}

// NewQueryHelper creates a new query helper.
func NewQueryHelper(pool *ConnectionPool) *QueryHelper {
	return &QueryHelper{pool: pool}
}

// QueryRow executes a query that returns a single row.
func (qh *QueryHelper) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return qh.pool.db.QueryRowContext(ctx, query, args...)
}

// Query executes a query that returns multiple rows.
func (qh *QueryHelper) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return qh.pool.db.QueryContext(ctx, query, args...)
}

// Exec executes a query that doesn't return rows.
func (qh *QueryHelper) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return qh.pool.db.ExecContext(ctx, query, args...)
}

// QueryRowTx executes a single-row query within a transaction.
func (qh *QueryHelper) QueryRowTx(tx *sql.Tx, query string, args ...any) *sql.Row {
	return tx.QueryRow(query, args...)
}

// QueryTx executes a multi-row query within a transaction.
func (qh *QueryHelper) QueryTx(tx *sql.Tx, query string, args ...any) (*sql.Rows, error) {
	return tx.Query(query, args...)
}

// ExecTx executes a statement within a transaction.
func (qh *QueryHelper) ExecTx(tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	return tx.Exec(query, args...)
}

// ErrorMapper maps SQLite errors to persistence layer errors.
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps SQLite-specific errors to persistence sentinels.
func (em *ErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}

	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}

	errStr := err.Error()

	if containsAny(errStr, "UNIQUE constraint failed", "PRIMARY KEY constraint failed") {
		return persistence.ErrDuplicate
	}
	if containsAny(errStr, "FOREIGN KEY constraint failed") {
		return persistence.ErrForeignKeyViolation
	}
	if containsAny(errStr, "CHECK constraint failed") {
		return persistence.ErrConstraintViolation
	}

	return err
}

func containsAny(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// --- shared column helpers ---

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return ts, nil
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func timeFromNullable(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	ts, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringFromNullable(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
