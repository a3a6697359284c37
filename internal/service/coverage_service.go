// internal/service/coverage_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/plantops/supply-coverage/internal/cache"
	"github.com/plantops/supply-coverage/internal/domain"
	"github.com/plantops/supply-coverage/internal/repository"
)

// CoverageService answers read queries over stored runs, fronted by the
// coverage cache.
type CoverageService struct {
	repo  repository.CoverageRepository
	cache cache.CoverageCache
}

func NewCoverageService(repo repository.CoverageRepository, cch cache.CoverageCache) *CoverageService {
	if cch == nil {
		cch = cache.NewNoopCoverageCache()
	}
	return &CoverageService{repo: repo, cache: cch}
}

func (s *CoverageService) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return s.repo.ListRuns(ctx, limit)
}

func (s *CoverageService) GetRun(ctx context.Context, id int64) (*domain.Run, error) {
	return s.repo.GetRun(ctx, id)
}

func (s *CoverageService) LatestRunID(ctx context.Context) (int64, error) {
	return s.repo.LatestRunID(ctx)
}

// GetItems resolves run 0 to the latest run, then serves from cache when it
// can.
func (s *CoverageService) GetItems(ctx context.Context, filter domain.CoverageFilter) ([]domain.CoverageItem, error) {
	if filter.RunID == 0 {
		latest, err := s.repo.LatestRunID(ctx)
		if err != nil {
			return nil, err
		}
		filter.RunID = latest
	}

	if items, hit, err := s.cache.GetItems(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("coverage cache read failed")
	} else if hit {
		return items, nil
	}

	items, err := s.repo.GetItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetItems(ctx, filter, items); err != nil {
		log.Warn().Err(err).Msg("coverage cache write failed")
	}
	return items, nil
}

func (s *CoverageService) GetMaterials(ctx context.Context, runID int64) ([]domain.CoverageItem, error) {
	if runID == 0 {
		latest, err := s.repo.LatestRunID(ctx)
		if err != nil {
			return nil, err
		}
		runID = latest
	}
	return s.repo.GetMaterials(ctx, runID)
}
