// cmd/api/main.go
package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/plantops/supply-coverage/internal/api"
	"github.com/plantops/supply-coverage/internal/cache"
	"github.com/plantops/supply-coverage/internal/config"
	"github.com/plantops/supply-coverage/internal/fleet"
	"github.com/plantops/supply-coverage/internal/forecast"
	"github.com/plantops/supply-coverage/internal/repository/postgres"
	"github.com/plantops/supply-coverage/internal/service"
	"github.com/plantops/supply-coverage/internal/storage"
	"github.com/plantops/supply-coverage/pkg/logger"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize database")
	}
	repo := postgres.NewCoverageRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	coverageCache, err := cache.NewCoverageCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, running without it")
		coverageCache = cache.NewNoopCoverageCache()
	}

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		store, err = storage.NewDocStoreClient(cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("failed to initialize document store")
		}
	}

	var fleetClient service.FleetAPI
	if cfg.Fleet.BaseURL != "" {
		fleetClient = fleet.NewClient(cfg.Fleet)
	}
	var forecaster service.Forecaster
	if cfg.Forecast.BaseURL != "" {
		forecaster = forecast.NewClient(cfg.Forecast)
	}

	services := &api.Services{
		AnalysisService: service.NewAnalysisService(cfg, fleetClient, forecaster, store, repo, coverageCache),
		CoverageService: service.NewCoverageService(repo, coverageCache),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Log.Info().Str("addr", addr).Msg("server starting")
	if err := router.Run(addr); err != nil {
		logger.Log.Fatal().Err(err).Msg("server stopped")
	}
}
