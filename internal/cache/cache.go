package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/urlup/internal/model"
)

// dbFileName is the cache database file inside the cache directory.
const dbFileName = "urlup.db"

// Store provides SQLite-based storage for validation results.
// It manages connection pooling and provides the age-windowed lookup
// the validation engine consults before dispatching a request.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("cache not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// SQLITE_BUSY churn under the concurrent validation workers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- One row per distinct URL, overwritten on every fresh check
	CREATE TABLE IF NOT EXISTS checks (
		url TEXT PRIMARY KEY,
		status_code INTEGER NOT NULL,
		class TEXT NOT NULL,
		detail TEXT,
		attempts INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		checked_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Put inserts or updates the outcome for its URL.
// Uses UPSERT so re-checking a URL refreshes its row in place.
func (s *Store) Put(ctx context.Context, outcome model.Outcome) error {
	query := `
	INSERT INTO checks (url, status_code, class, detail, attempts, duration_ms, checked_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(url) DO UPDATE SET
		status_code = excluded.status_code,
		class = excluded.class,
		detail = excluded.detail,
		attempts = excluded.attempts,
		duration_ms = excluded.duration_ms,
		checked_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query,
		outcome.URL,
		outcome.StatusCode,
		outcome.Class.String(),
		outcome.Detail,
		outcome.Attempts,
		outcome.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to store check result: %w", err)
	}

	return nil
}

// Get retrieves the cached outcome for a URL checked within maxAge.
// Only successful outcomes are ever returned; failures must always be
// re-verified. A non-positive maxAge never matches anything.
func (s *Store) Get(ctx context.Context, url string, maxAge time.Duration) (model.Outcome, bool, error) {
	if maxAge <= 0 {
		return model.Outcome{}, false, nil
	}

	query := `
	SELECT status_code, class, detail, attempts, duration_ms
	FROM checks
	WHERE url = ? AND class = ? AND checked_at > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(maxAge.Seconds()))

	var (
		outcome    model.Outcome
		className  string
		durationMS int64
	)
	outcome.URL = url

	err := s.db.QueryRowContext(ctx, query, url, model.ClassSuccess.String(), modifier).Scan(
		&outcome.StatusCode,
		&className,
		&outcome.Detail,
		&outcome.Attempts,
		&durationMS,
	)
	if err == sql.ErrNoRows {
		return model.Outcome{}, false, nil
	}
	if err != nil {
		return model.Outcome{}, false, fmt.Errorf("failed to get check result: %w", err)
	}

	class, err := model.ParseClassification(className)
	if err != nil {
		return model.Outcome{}, false, fmt.Errorf("failed to parse cached result: %w", err)
	}
	outcome.Class = class
	outcome.Duration = time.Duration(durationMS) * time.Millisecond

	return outcome, true, nil
}

// Prune deletes entries older than maxAge and returns how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	query := `DELETE FROM checks WHERE checked_at <= datetime('now', ?)`

	modifier := fmt.Sprintf("-%d seconds", int(maxAge.Seconds()))

	result, err := s.db.ExecContext(ctx, query, modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}

	return result.RowsAffected()
}

// Len returns the number of cached entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM checks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}
