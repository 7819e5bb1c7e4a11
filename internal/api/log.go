package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/pageza/macrolog/backend/internal/types"
)

// DashboardResponse is today's log with totals measured against goals.
type DashboardResponse struct {
	Date     string            `json:"date"`
	Entries  []model.LogEntry  `json:"entries"`
	Totals   model.MacroTotals `json:"totals"`
	Goals    model.Goals       `json:"goals"`
	Progress model.Progress    `json:"progress"`
}

type LogHandler struct {
	logs  *service.LogService
	goals *service.GoalService
	log   *logger.Logger
}

func NewLogHandler(logs *service.LogService, goals *service.GoalService, log *logger.Logger) *LogHandler {
	return &LogHandler{logs: logs, goals: goals, log: log}
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/log")
	{
		logs.GET("/today", h.Today)
		logs.POST("/entries", h.AddEntry)
		logs.POST("/entries/from-food", h.AddEntryFromFood)
		logs.DELETE("/entries/:id", h.DeleteEntry)
	}
}

// Today serves the dashboard. Entry and goal read failures degrade to an
// empty list and the default targets.
func (h *LogHandler) Today(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	date := h.logs.Today()

	entries, err := h.logs.ListEntries(ctx, userID, date)
	if err != nil {
		h.log.Warn("loading today's entries failed", "user_id", userID, "error", err)
		entries = []model.LogEntry{}
	}

	goals := model.DefaultGoals(userID)
	if stored, err := h.goals.GetOrCreateGoals(ctx, userID); err != nil {
		h.log.Warn("loading goals failed, using defaults", "user_id", userID, "error", err)
	} else {
		goals = *stored
	}

	totals := service.Totals(entries)
	c.JSON(http.StatusOK, DashboardResponse{
		Date:     date,
		Entries:  entries,
		Totals:   totals,
		Goals:    goals,
		Progress: service.ComputeProgress(totals, goals),
	})
}

func (h *LogHandler) AddEntry(c *gin.Context) {
	var req types.AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "must be a valid entry")
		return
	}

	entry, err := h.logs.AddEntry(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *LogHandler) AddEntryFromFood(c *gin.Context) {
	var req types.AddFromFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "must contain food_id and quantity")
		return
	}

	entry, err := h.logs.AddEntryFromFood(c.Request.Context(), middleware.UserID(c), req.FoodID, req.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// DeleteEntry answers ok even when nothing matched.
func (h *LogHandler) DeleteEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id", "must be a UUID")
		return
	}

	if err := h.logs.DeleteEntry(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
