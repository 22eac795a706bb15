package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted on the engine.
type Handlers struct {
	OutStock  *handlers.OutStockHandler
	Entry     *handlers.EntryHandler
	Dashboard *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	sessions := r.Group("/outstock/sessions")
	sessions.POST("", h.OutStock.Open)
	sessions.GET("/:id", h.OutStock.Get)
	sessions.PUT("/:id/form", h.OutStock.UpdateForm)
	sessions.POST("/:id/submit", h.OutStock.Submit)
	sessions.DELETE("/:id", h.OutStock.Close)

	r.POST("/entry", h.Entry.Create)

	dashboard := r.Group("/dashboard")
	dashboard.GET("/stock", h.Dashboard.Stock)
	dashboard.GET("/outstock", h.Dashboard.OutStock)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
