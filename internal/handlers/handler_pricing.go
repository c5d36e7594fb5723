package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	portssvc "github.com/paymentops/settlement-backend/internal/core/ports/services"
	"github.com/paymentops/settlement-backend/internal/dto"
	"github.com/paymentops/settlement-backend/internal/middleware"
)

// pricingHandler handles HTTP requests for per-site fee schedules.
type pricingHandler struct {
	pricingService portssvc.PricingSvcFacade
}

// NewPricingHandler creates a new pricingHandler.
func NewPricingHandler(pricingService portssvc.PricingSvcFacade) *pricingHandler {
	return &pricingHandler{pricingService: pricingService}
}

// GetPricing godoc
// @Summary Get a site's fee schedule
// @Tags pricing
// @Produce  json
// @Param   siteID path string true "Site ID"
// @Success 200 {object} dto.PricingConfigResponse
// @Failure 404 {object} map[string]string "No pricing configured"
// @Router /sites/{siteID}/pricing [get]
func (h *pricingHandler) GetPricing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	siteID := c.Param("siteID")

	pricing, err := h.pricingService.GetPricing(c.Request.Context(), siteID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No pricing configured for site"})
			return
		}
		logger.Error("Failed to get pricing config", slog.String("site_id", siteID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pricing config"})
		return
	}

	c.JSON(http.StatusOK, dto.ToPricingConfigResponse(pricing))
}

// UpsertPricing godoc
// @Summary Create or replace a site's fee schedule
// @Description The running reserve_collected total is preserved across upserts.
// @Tags pricing
// @Accept  json
// @Produce  json
// @Param   siteID path string true "Site ID"
// @Param   pricing body dto.UpsertPricingRequest true "Fee schedule"
// @Success 200 {object} dto.PricingConfigResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Site not found"
// @Router /sites/{siteID}/pricing [put]
func (h *pricingHandler) UpsertPricing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	siteID := c.Param("siteID")

	req := dto.UpsertPricingRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertPricing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pricing, err := h.pricingService.UpsertPricing(c.Request.Context(), siteID, req, updaterUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		default:
			logger.Error("Failed to upsert pricing config", slog.String("site_id", siteID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save pricing config"})
		}
		return
	}

	logger.Info("Pricing config saved", slog.String("site_id", siteID))
	c.JSON(http.StatusOK, dto.ToPricingConfigResponse(pricing))
}
