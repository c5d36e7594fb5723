package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	"github.com/paymentops/settlement-backend/internal/core/services"
	"github.com/paymentops/settlement-backend/internal/dto"
	"github.com/paymentops/settlement-backend/internal/middleware"

	portssvc "github.com/paymentops/settlement-backend/internal/core/ports/services"
)

// settlementHandler handles HTTP requests for the settlement engine.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

// NewSettlementHandler creates a new settlementHandler.
func NewSettlementHandler(settlementService portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{settlementService: settlementService}
}

// RunSettlements godoc
// @Summary Run the weekly settlement batch
// @Description Settles the most recently completed Monday-Sunday week for every active site, or for the sites given in the optional body. Callers must inspect each results entry; the top-level success flag only says the batch ran.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   run body dto.RunSettlementsRequest false "Optional roster subset"
// @Success 200 {object} dto.RunSettlementsResponse
// @Failure 400 {object} map[string]string "Unknown site requested"
// @Failure 500 {object} map[string]interface{} "Batch-level failure"
// @Router /settlements/run [post]
func (h *settlementHandler) RunSettlements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	// The scheduled form carries no body; GET triggers are also accepted.
	req := dto.RunSettlementsRequest{}
	if c.Request.Method == http.MethodPost && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RunSettlements", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}
	}

	run, err := h.settlementService.RunWeeklyBatch(c.Request.Context(), req.SiteIDs)
	if err != nil {
		if errors.Is(err, services.ErrSiteUnknown) {
			logger.Warn("Batch requested for unknown site", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		logger.Error("Settlement batch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ToRunSettlementsResponse(run))
}

// ListBatchRuns godoc
// @Summary List recent batch runs
// @Description Returns the audit trail of settlement batch runs, newest first
// @Tags settlements
// @Produce  json
// @Param   limit query int false "Max results (default 10)"
// @Success 200 {object} map[string]interface{}
// @Router /settlements/batches [get]
func (h *settlementHandler) ListBatchRuns(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	runs, err := h.settlementService.ListRecentBatchRuns(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to list batch runs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list batch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"batches": dto.ToBatchRunResponses(runs)})
}

// GetSettlement godoc
// @Summary Get one settlement report
// @Description Retrieves a settlement report with its itemized transaction snapshots
// @Tags settlements
// @Produce  json
// @Param   reportNumber path string true "Report number"
// @Success 200 {object} dto.SettlementReportResponse
// @Failure 404 {object} map[string]string "Report not found"
// @Router /settlements/{reportNumber} [get]
func (h *settlementHandler) GetSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reportNumber := c.Param("reportNumber")

	report, err := h.settlementService.GetReportByNumber(c.Request.Context(), reportNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Settlement report not found"})
			return
		}
		logger.Error("Failed to get settlement report", slog.String("report_number", reportNumber), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settlement report"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSettlementReportResponse(report))
}

// ListSettlements godoc
// @Summary List settlement reports for a site
// @Tags settlements
// @Produce  json
// @Param   siteID query string true "Site ID"
// @Param   limit query int false "Max results (default 20)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "siteID missing"
// @Router /settlements [get]
func (h *settlementHandler) ListSettlements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	siteID := c.Query("siteID")
	if siteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "siteID query parameter is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reports, err := h.settlementService.ListReportsBySite(c.Request.Context(), siteID, limit)
	if err != nil {
		logger.Error("Failed to list settlement reports", slog.String("site_id", siteID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list settlement reports"})
		return
	}

	responses := make([]dto.SettlementReportResponse, len(reports))
	for i := range reports {
		responses[i] = dto.ToSettlementReportResponse(&reports[i])
	}
	c.JSON(http.StatusOK, gin.H{"reports": responses})
}
