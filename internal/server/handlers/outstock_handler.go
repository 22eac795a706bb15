package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/outstock"
)

// SessionStore opens and tracks out-stock sessions.
type SessionStore interface {
	Open(ctx context.Context) (*outstock.Session, error)
	Get(id string) (*outstock.Session, error)
	Close(id string) error
}

// OutStockHandler exposes the out-stock issuance form over HTTP.
type OutStockHandler struct {
	sessions SessionStore
	logger   *zap.Logger
}

// NewOutStockHandler constructs the HTTP handler adapter.
func NewOutStockHandler(sessions SessionStore, logger *zap.Logger) *OutStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutStockHandler{sessions: sessions, logger: logger}
}

type submitResponse struct {
	outstock.View
	ErrorKind outstock.Kind `json:"errorKind,omitempty"`
}

// Open starts a session and loads its catalog. A failed load still creates
// the session; the failure is carried in its message slot.
func (h *OutStockHandler) Open(c *gin.Context) {
	sess, err := h.sessions.Open(c.Request.Context())
	if err != nil {
		h.logger.Warn("session opened without catalog", zap.String("session_id", sess.ID()), zap.Error(err))
	}
	c.JSON(http.StatusCreated, sess.View())
}

// Get returns the session view.
func (h *OutStockHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// UpdateForm replaces the form value.
func (h *OutStockHandler) UpdateForm(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req models.IssuanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid form payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := sess.Edit(req); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": outstock.MsgInFlight})
		return
	}

	c.JSON(http.StatusOK, sess.View())
}

// Submit runs validation and, when it passes, the issuance request.
func (h *OutStockHandler) Submit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	err := sess.Submit(c.Request.Context())
	resp := submitResponse{View: sess.View(), ErrorKind: outstock.KindOf(err)}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, outstock.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, resp)
	case resp.ErrorKind == outstock.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, resp)
	default:
		c.JSON(http.StatusBadGateway, resp)
	}
}

// Close discards the session.
func (h *OutStockHandler) Close(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OutStockHandler) session(c *gin.Context) (*outstock.Session, bool) {
	sess, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}
