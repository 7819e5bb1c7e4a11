package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/pageza/macrolog/backend/internal/types"
)

type GoalsHandler struct {
	goals *service.GoalService
	log   *logger.Logger
}

func NewGoalsHandler(goals *service.GoalService, log *logger.Logger) *GoalsHandler {
	return &GoalsHandler{goals: goals, log: log}
}

func (h *GoalsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/goals", h.GetGoals)
	router.PUT("/goals", h.UpdateGoals)
}

func (h *GoalsHandler) GetGoals(c *gin.Context) {
	goals, err := h.goals.GetOrCreateGoals(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// UpdateGoals makes sure the row exists before overwriting it, since the
// settings form can be submitted before the goals were ever read.
func (h *GoalsHandler) UpdateGoals(c *gin.Context) {
	var req types.UpdateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "must contain integer targets")
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	if _, err := h.goals.GetOrCreateGoals(ctx, userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	goals, err := h.goals.UpdateGoals(ctx, userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}
