package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-ai/docsmith/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestGenerationCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Create
	g := &models.Generation{
		Title:          "main.py",
		Mode:           models.ModeSingle,
		Status:         models.StatusSuccess,
		GeneratorLabel: "ai",
		FileCount:      1,
		ProcessedCount: 1,
		Documentation:  "# main.py\n\nEntry point.",
	}
	err := s.SaveGeneration(ctx, g)
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID, "should assign ULID")
	assert.False(t, g.CreatedAt.IsZero(), "should stamp CreatedAt")

	// Get
	got, err := s.GetGeneration(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Title, got.Title)
	assert.Equal(t, models.ModeSingle, got.Mode)
	assert.Equal(t, models.StatusSuccess, got.Status)
	assert.Equal(t, "ai", got.GeneratorLabel)
	assert.Equal(t, 1, got.FileCount)
	assert.Equal(t, g.Documentation, got.Documentation)
	assert.WithinDuration(t, g.CreatedAt, got.CreatedAt, time.Second)

	// Delete
	err = s.DeleteGeneration(ctx, g.ID)
	require.NoError(t, err)

	_, err = s.GetGeneration(ctx, g.ID)
	assert.Error(t, err)
}

func TestGetGeneration_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetGeneration(context.Background(), "01JMISSING00000000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteGeneration_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteGeneration(context.Background(), "01JMISSING00000000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveGeneration_KeepsSuppliedTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	when := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	g := &models.Generation{Title: "old.py", Mode: models.ModeSingle, Status: models.StatusSuccess, CreatedAt: when}
	require.NoError(t, s.SaveGeneration(ctx, g))

	got, err := s.GetGeneration(ctx, g.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, when, got.CreatedAt, time.Second)
}

func TestListGenerations_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"first.py", "second.py", "third.py"} {
		g := &models.Generation{
			Title:     title,
			Mode:      models.ModeSingle,
			Status:    models.StatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.SaveGeneration(ctx, g))
	}

	list, err := s.ListGenerations(ctx, GenerationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third.py", list[0].Title)
	assert.Equal(t, "second.py", list[1].Title)
	assert.Equal(t, "first.py", list[2].Title)
}

func TestListGenerations_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []*models.Generation{
		{Title: "a.py", Mode: models.ModeSingle, Status: models.StatusSuccess},
		{Title: "b.py", Mode: models.ModeMultiple, Status: models.StatusPartial},
		{Title: "c.py", Mode: models.ModeFolder, Status: models.StatusSuccess},
		{Title: "d.py", Mode: models.ModeFolder, Status: models.StatusError},
	}
	for _, g := range seed {
		require.NoError(t, s.SaveGeneration(ctx, g))
	}

	byStatus, err := s.ListGenerations(ctx, GenerationFilter{Status: models.StatusSuccess})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byMode, err := s.ListGenerations(ctx, GenerationFilter{Mode: models.ModeFolder})
	require.NoError(t, err)
	assert.Len(t, byMode, 2)

	both, err := s.ListGenerations(ctx, GenerationFilter{Mode: models.ModeFolder, Status: models.StatusError})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "d.py", both[0].Title)
}

func TestListGenerations_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		g := &models.Generation{
			Title:     "gen.py",
			Mode:      models.ModeSingle,
			Status:    models.StatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.SaveGeneration(ctx, g))
	}

	list, err := s.ListGenerations(ctx, GenerationFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListGenerations_Empty(t *testing.T) {
	s := newTestStore(t)

	list, err := s.ListGenerations(context.Background(), GenerationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
