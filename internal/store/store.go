package store

import (
	"context"

	"github.com/docsmith-ai/docsmith/internal/models"
)

// GenerationFilter specifies filters for listing cached generations.
type GenerationFilter struct {
	Status models.OutcomeStatus
	Mode   models.SelectionMode
	Limit  int
}

// Store defines the persistence interface for docsmith's local history.
type Store interface {
	SaveGeneration(ctx context.Context, g *models.Generation) error
	GetGeneration(ctx context.Context, id string) (*models.Generation, error)
	ListGenerations(ctx context.Context, filter GenerationFilter) ([]*models.Generation, error)
	DeleteGeneration(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
