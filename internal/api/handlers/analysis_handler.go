// internal/api/handlers/analysis_handler.go
package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/plantops/supply-coverage/internal/config"
	"github.com/plantops/supply-coverage/internal/service"
)

type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

const requestDateLayout = "2006-01-02"

// Analyze accepts the three extracts as multipart files and runs the
// pipeline synchronously, returning the run summary.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	uploadDir := config.Load().App.UploadDir

	stockPath, ok := saveFormFile(c, "stock", uploadDir)
	if !ok {
		return
	}
	ledgerPath, ok := saveFormFile(c, "ledger", uploadDir)
	if !ok {
		return
	}
	refPath, ok := saveFormFile(c, "reference", uploadDir)
	if !ok {
		return
	}

	to := parseDateWithDefault(c.PostForm("to"), time.Now())
	from := parseDateWithDefault(c.PostForm("from"), to.AddDate(0, 0, -15))
	tolerance, _ := strconv.ParseFloat(c.PostForm("tolerance_pct"), 64)
	persist := c.PostForm("persist") == "true"

	summary, err := h.analysisService.RunAnalysis(c.Request.Context(), service.AnalysisRequest{
		StockPath:     stockPath,
		LedgerPath:    ledgerPath,
		ReferencePath: refPath,
		From:          from,
		To:            to,
		TolerancePct:  tolerance,
		Persist:       persist,
	})
	if err != nil {
		log.Error().Err(err).Msg("coverage analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func saveFormFile(c *gin.Context, field, uploadDir string) (string, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field: " + field})
		return "", false
	}
	path := filepath.Join(uploadDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file"})
		return "", false
	}
	return path, true
}

func parseDateWithDefault(value string, fallback time.Time) time.Time {
	if t, err := time.Parse(requestDateLayout, value); err == nil {
		return t
	}
	return fallback
}
