package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seichi-note/content-api/internal/database"
	"github.com/seichi-note/content-api/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, sessions SessionProvider, db *database.DB, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	adminHandler := NewAdminHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(db))

	// API v1 — everything below requires a session
	v1 := router.Group("/v1")
	v1.Use(sessionMiddleware(sessions))
	{
		articles := v1.Group("/articles")
		{
			articles.POST("", articleHandler.CreateDraft)
			articles.GET("", articleHandler.List)
			articles.GET("/:id", articleHandler.Get)
			articles.PUT("/:id", articleHandler.UpdateDraft)
			articles.DELETE("/:id", articleHandler.Delete)

			articles.POST("/:id/submit", articleHandler.Submit)
			articles.POST("/:id/withdraw", articleHandler.Withdraw)
			articles.POST("/:id/reject", adminHandler.Reject)
			articles.POST("/:id/publish", adminHandler.Publish)
			articles.POST("/:id/unpublish", adminHandler.Unpublish)
			articles.PATCH("/:id/slug", adminHandler.RepairSlug)

			articles.POST("/:id/revision", articleHandler.GetOrCreateRevision)
		}

		revisions := v1.Group("/revisions")
		{
			revisions.PUT("/:id", articleHandler.UpdateRevisionDraft)
			revisions.POST("/:id/submit", articleHandler.SubmitRevision)
			revisions.POST("/:id/withdraw", articleHandler.WithdrawRevision)
			revisions.POST("/:id/reject", adminHandler.RejectRevision)
			revisions.POST("/:id/approve", adminHandler.ApproveRevision)
		}

		cities := v1.Group("/cities")
		{
			cities.POST("/:id/merge", adminHandler.MergeCities)
		}
	}

	return router
}

// healthCheck returns the health status including a database ping
func healthCheck(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "content-api",
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID, X-Admin")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
