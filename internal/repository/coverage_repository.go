// internal/repository/coverage_repository.go
package repository

import (
	"context"

	"github.com/plantops/supply-coverage/internal/domain"
)

// CoverageRepository persists analysis runs and their coverage rows.
type CoverageRepository interface {
	EnsureSchema(ctx context.Context) error
	InsertRun(ctx context.Context, run *domain.Run, items []domain.CoverageItem) (int64, error)
	GetRun(ctx context.Context, id int64) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
	LatestRunID(ctx context.Context) (int64, error)
	GetItems(ctx context.Context, filter domain.CoverageFilter) ([]domain.CoverageItem, error)
	GetMaterials(ctx context.Context, runID int64) ([]domain.CoverageItem, error)
}
