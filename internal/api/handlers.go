package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/macrolog/backend/internal/database"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/service"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	DB            *gorm.DB
	Auth          middleware.TokenValidator
	Foods         *service.FoodService
	Logs          *service.LogService
	History       *service.HistoryService
	Goals         *service.GoalService
	Exports       *service.ExportService
	Views         service.StaleViewsSubscriber
	SearchLimiter *middleware.RateLimiter
	Log           *logger.Logger
}

// HealthCheck reports liveness and store reachability.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := database.HealthCheck(ctx, db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "message": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "macrolog API is running",
			"version": "v1.0.0",
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, s Services) {
	router.GET("/health", HealthCheck(s.DB))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(s.Auth))

	NewFoodHandler(s.Foods, s.SearchLimiter, s.Log).RegisterRoutes(v1)
	NewLogHandler(s.Logs, s.Goals, s.Log).RegisterRoutes(v1)
	NewHistoryHandler(s.History, s.Exports, s.Log).RegisterRoutes(v1)
	NewGoalsHandler(s.Goals, s.Log).RegisterRoutes(v1)
	NewViewsHandler(s.Views, s.Log).RegisterRoutes(v1)
}
