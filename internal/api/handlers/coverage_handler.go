// internal/api/handlers/coverage_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plantops/supply-coverage/internal/domain"
	"github.com/plantops/supply-coverage/internal/service"
)

type CoverageHandler struct {
	coverageService *service.CoverageService
}

func NewCoverageHandler(coverageService *service.CoverageService) *CoverageHandler {
	return &CoverageHandler{coverageService: coverageService}
}

// ListRuns returns the most recent runs, newest first.
func (h *CoverageHandler) ListRuns(c *gin.Context) {
	limit := parsePositiveIntWithDefault(c.Query("limit"), 20)
	runs, err := h.coverageService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *CoverageHandler) GetRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	run, err := h.coverageService.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *CoverageHandler) GetLatestRun(c *gin.Context) {
	id, err := h.coverageService.LatestRunID(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	run, err := h.coverageService.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetItems returns coverage rows for a run; run_id 0 means the latest run.
func (h *CoverageHandler) GetItems(c *gin.Context) {
	var filter domain.CoverageFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}

	items, err := h.coverageService.GetItems(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch coverage items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetMaterials returns the per-material aggregates for a run.
func (h *CoverageHandler) GetMaterials(c *gin.Context) {
	runID, _ := strconv.ParseInt(c.Query("run_id"), 10, 64)
	items, err := h.coverageService.GetMaterials(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch material aggregates"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if fallback <= 0 {
		fallback = 20
	}
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
