package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elchin/deskhelp/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		identityMiddleware(cfg.Auth.JWTSecret),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/qa/ask", handler.AskQuestion)
		api.GET("/qa/history", handler.QAHistory)

		api.POST("/tickets", handler.CreateTicket)
		api.GET("/tickets", handler.ListTickets)
		api.GET("/tickets/:id", handler.GetTicket)
		api.POST("/tickets/:id/reply-suggestions", handler.SuggestReplies)
		api.POST("/routing/feedback", handler.RoutingFeedback)

		api.POST("/documents/upload", handler.UploadDocument)
		api.GET("/documents", handler.ListDocuments)
		api.GET("/documents/:id", handler.GetDocument)
		api.POST("/documents/:id/reprocess", handler.ReprocessDocument)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
