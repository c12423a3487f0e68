package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/docsmith-ai/docsmith/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Generations ---

// SaveGeneration inserts a finished run into the history cache. A zero
// CreatedAt is stamped with the current time; a supplied one is kept.
func (s *SQLiteStore) SaveGeneration(ctx context.Context, g *models.Generation) error {
	if g.ID == "" {
		g.ID = newULID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (id, remote_id, title, mode, status, generator, file_count, processed_count, documentation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.RemoteID, g.Title, string(g.Mode), string(g.Status), g.GeneratorLabel,
		g.FileCount, g.ProcessedCount, g.Documentation, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save generation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGeneration(ctx context.Context, id string) (*models.Generation, error) {
	g := &models.Generation{}
	var mode, status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, remote_id, title, mode, status, generator, file_count, processed_count, documentation, created_at
		FROM generations WHERE id = ?`, id,
	).Scan(&g.ID, &g.RemoteID, &g.Title, &mode, &status, &g.GeneratorLabel,
		&g.FileCount, &g.ProcessedCount, &g.Documentation, &g.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("generation not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}

	g.Mode = models.SelectionMode(mode)
	g.Status = models.OutcomeStatus(status)
	return g, nil
}

func (s *SQLiteStore) ListGenerations(ctx context.Context, filter GenerationFilter) ([]*models.Generation, error) {
	query := `SELECT id, remote_id, title, mode, status, generator, file_count, processed_count, documentation, created_at FROM generations`
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Mode != "" {
		conditions = append(conditions, "mode = ?")
		args = append(args, string(filter.Mode))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var generations []*models.Generation
	for rows.Next() {
		g := &models.Generation{}
		var mode, status string

		if err := rows.Scan(&g.ID, &g.RemoteID, &g.Title, &mode, &status, &g.GeneratorLabel,
			&g.FileCount, &g.ProcessedCount, &g.Documentation, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}

		g.Mode = models.SelectionMode(mode)
		g.Status = models.OutcomeStatus(status)
		generations = append(generations, g)
	}
	return generations, rows.Err()
}

func (s *SQLiteStore) DeleteGeneration(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM generations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete generation: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("generation not found: %s", id)
	}
	return nil
}
