package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/queue"
)

// NewRouter builds the gin engine. With no origins every origin is allowed.
func NewRouter(pipeline queue.Handler, origins []string, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	config := cors.DefaultConfig()
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	ingestHandler := NewIngestHandler(pipeline)

	r.GET("/health", HealthCheck)
	r.GET("/metrics", Metrics)

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)
		api.POST("/ingest", ingestHandler.Replay)
	}
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}
