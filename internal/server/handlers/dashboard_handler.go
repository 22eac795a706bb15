package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/reporting"
)

const defaultHistoryLimit = 50

// Dashboard serves stock levels and the issuance history.
type Dashboard interface {
	CurrentLevels(ctx context.Context) (models.StockReport, error)
	RecentIssuances(ctx context.Context, limit int) ([]models.IssuanceRecord, error)
}

// DashboardHandler exposes the read-only dashboards.
type DashboardHandler struct {
	svc    Dashboard
	logger *zap.Logger
}

// NewDashboardHandler constructs the dashboard handler.
func NewDashboardHandler(svc Dashboard, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Stock returns current stock levels.
func (h *DashboardHandler) Stock(c *gin.Context) {
	report, err := h.svc.CurrentLevels(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading stock levels", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load stock data"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// OutStock returns the most recent issuances.
func (h *DashboardHandler) OutStock(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := h.svc.RecentIssuances(c.Request.Context(), limit)
	switch {
	case errors.Is(err, reporting.ErrHistoryUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "issuance history is not configured"})
	case err != nil:
		h.logger.Error("failed loading issuance history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load issuance history"})
	default:
		c.JSON(http.StatusOK, gin.H{"issuances": records})
	}
}
