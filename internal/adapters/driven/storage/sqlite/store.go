package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/slipdeck/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the job and campaign store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.slipdeck/data/slipdeck.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".slipdeck", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "slipdeck.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// JobStore returns a JobStore interface backed by this store.
func (s *Store) JobStore() driven.JobStore {
	return &jobStore{store: s}
}

// CampaignStore returns a CampaignStore interface backed by this store.
func (s *Store) CampaignStore() driven.CampaignStore {
	return &campaignStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Job Store ====================

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// SaveJob stores a completed processing run.
func (s *jobStore) SaveJob(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		return domain.ErrInvalidInput
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO jobs
			(id, source_uri, template_uri, output_uri, total_slides, updated_count, error_count, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_uri = excluded.source_uri,
			template_uri = excluded.template_uri,
			output_uri = excluded.output_uri,
			total_slides = excluded.total_slides,
			updated_count = excluded.updated_count,
			error_count = excluded.error_count,
			result = excluded.result
	`, job.ID, job.SourceURI, job.TemplateURI, job.OutputURI,
		job.TotalSlides, job.UpdatedCount, job.ErrorCount, job.ResultJSON, job.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	return nil
}

// GetJob retrieves a processing run by ID.
func (s *jobStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_uri, template_uri, output_uri, total_slides, updated_count, error_count, result, created_at
		FROM jobs WHERE id = ?
	`, id)

	return scanJob(row)
}

// ListJobs returns processing runs newest first, up to limit (0 means all).
func (s *jobStore) ListJobs(ctx context.Context, limit int) ([]domain.Job, error) {
	query := `
		SELECT id, source_uri, template_uri, output_uri, total_slides, updated_count, error_count, result, created_at
		FROM jobs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job //nolint:prealloc // size unknown from query
	for rows.Next() {
		var job domain.Job
		var createdAt sql.NullTime
		if err := rows.Scan(&job.ID, &job.SourceURI, &job.TemplateURI, &job.OutputURI,
			&job.TotalSlides, &job.UpdatedCount, &job.ErrorCount, &job.ResultJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		if createdAt.Valid {
			job.CreatedAt = createdAt.Time
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}

	return jobs, nil
}

// scanJob scans a single job row.
func scanJob(row *sql.Row) (*domain.Job, error) {
	var job domain.Job
	var createdAt sql.NullTime

	if err := row.Scan(&job.ID, &job.SourceURI, &job.TemplateURI, &job.OutputURI,
		&job.TotalSlides, &job.UpdatedCount, &job.ErrorCount, &job.ResultJSON, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	if createdAt.Valid {
		job.CreatedAt = createdAt.Time
	}

	return &job, nil
}
