package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	portssvc "github.com/paymentops/settlement-backend/internal/core/ports/services"
	"github.com/paymentops/settlement-backend/internal/dto"
	"github.com/paymentops/settlement-backend/internal/middleware"
)

// siteHandler handles HTTP requests for the merchant site roster.
type siteHandler struct {
	siteService portssvc.SiteSvcFacade
}

// NewSiteHandler creates a new siteHandler.
func NewSiteHandler(siteService portssvc.SiteSvcFacade) *siteHandler {
	return &siteHandler{siteService: siteService}
}

// CreateSite godoc
// @Summary Register a new merchant site
// @Tags sites
// @Accept  json
// @Produce  json
// @Param   site body dto.CreateSiteRequest true "Site"
// @Success 201 {object} dto.SiteResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /sites [post]
func (h *siteHandler) CreateSite(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.CreateSiteRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSite", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	site, err := h.siteService.CreateSite(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Error("Failed to create site", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create site"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToSiteResponse(site))
}

// ListSites godoc
// @Summary List active merchant sites
// @Tags sites
// @Produce  json
// @Success 200 {object} map[string]interface{}
// @Router /sites [get]
func (h *siteHandler) ListSites(c *gin.Context) {
	sites, err := h.siteService.ListSites(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list sites", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sites": dto.ToSiteResponses(sites)})
}

// ListSiteTransactions godoc
// @Summary List imported transactions for a site
// @Tags sites
// @Produce  json
// @Param   siteID path string true "Site ID"
// @Param   unsettled query bool false "Only unclaimed transactions"
// @Param   limit query int false "Max results (default 50)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Site not found"
// @Router /sites/{siteID}/transactions [get]
func (h *siteHandler) ListSiteTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	siteID := c.Param("siteID")

	unsettledOnly := c.Query("unsettled") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	transactions, err := h.siteService.ListSiteTransactions(c.Request.Context(), siteID, unsettledOnly, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
			return
		}
		logger.Error("Failed to list site transactions", slog.String("site_id", siteID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToTransactionResponses(transactions)})
}
