// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/plantops/supply-coverage/internal/api/handlers"
	"github.com/plantops/supply-coverage/internal/service"
)

type Services struct {
	AnalysisService *service.AnalysisService
	CoverageService *service.CoverageService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		coverageGroup := apiGroup.Group("/coverage")
		{
			if services.AnalysisService != nil {
				analysisHandler := handlers.NewAnalysisHandler(services.AnalysisService)
				coverageGroup.POST("/analyze", analysisHandler.Analyze)
			}
			if services.CoverageService != nil {
				coverageHandler := handlers.NewCoverageHandler(services.CoverageService)
				coverageGroup.GET("/runs", coverageHandler.ListRuns)
				coverageGroup.GET("/runs/latest", coverageHandler.GetLatestRun)
				coverageGroup.GET("/runs/:id", coverageHandler.GetRun)
				coverageGroup.GET("/items", coverageHandler.GetItems)
				coverageGroup.GET("/materials", coverageHandler.GetMaterials)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
