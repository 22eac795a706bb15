package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/entry"
)

// EntrySubmitter records incoming stock.
type EntrySubmitter interface {
	Submit(ctx context.Context, e models.StockEntry) (entry.Result, error)
}

// EntryHandler exposes the stock entry form.
type EntryHandler struct {
	svc    EntrySubmitter
	logger *zap.Logger
}

// NewEntryHandler constructs the entry handler.
func NewEntryHandler(svc EntrySubmitter, logger *zap.Logger) *EntryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryHandler{svc: svc, logger: logger}
}

// Create submits a stock entry.
func (h *EntryHandler) Create(c *gin.Context) {
	var req models.StockEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, entry.Result{Message: "All fields are required"})
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, res)
	case errors.Is(err, entry.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, res)
	default:
		c.JSON(http.StatusBadGateway, res)
	}
}
