package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/service"
)

type FoodHandler struct {
	foods   *service.FoodService
	limiter *middleware.RateLimiter
	log     *logger.Logger
}

func NewFoodHandler(foods *service.FoodService, limiter *middleware.RateLimiter, log *logger.Logger) *FoodHandler {
	return &FoodHandler{foods: foods, limiter: limiter, log: log}
}

func (h *FoodHandler) RegisterRoutes(router *gin.RouterGroup) {
	foods := router.Group("/foods")
	{
		if h.limiter != nil {
			foods.GET("/search", h.limiter.RateLimitMiddleware(), h.Search)
		} else {
			foods.GET("/search", h.Search)
		}
		foods.GET("/:id", h.GetFood)
	}
}

// Search always answers 200; lookup failures come back as no items.
func (h *FoodHandler) Search(c *gin.Context) {
	items := h.foods.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *FoodHandler) GetFood(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id", "must be a UUID")
		return
	}

	food, err := h.foods.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"food": food})
}
