// Package store provides result persistence implementations.
package store

import (
	"context"
	"time"

	"option-strategist/internal/models"
)

// OutcomeFilter narrows GetOutcomes queries.
type OutcomeFilter struct {
	Symbol    string
	Status    models.OutcomeStatus
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// ResultStore persists per-symbol analysis outcomes and their ranked
// strategies.
type ResultStore interface {
	SaveOutcome(ctx context.Context, outcome *models.SymbolOutcome) error
	GetOutcomes(ctx context.Context, filter OutcomeFilter) ([]models.SymbolOutcome, error)
	GetLatestOutcome(ctx context.Context, symbol string) (*models.SymbolOutcome, error)
	Close() error
}
