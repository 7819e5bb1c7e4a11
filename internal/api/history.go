package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/pageza/macrolog/backend/internal/types"
)

type HistoryHandler struct {
	history *service.HistoryService
	exports *service.ExportService
	log     *logger.Logger
}

func NewHistoryHandler(history *service.HistoryService, exports *service.ExportService, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, exports: exports, log: log}
}

func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	history := router.Group("/history")
	{
		history.GET("", h.List)
		history.POST("/export", h.Export)
	}
}

func (h *HistoryHandler) List(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	items, err := h.history.RecentLogs(c.Request.Context(), middleware.UserID(c), days)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": items, "window": h.history.WindowDays(days)})
}

func (h *HistoryHandler) Export(c *gin.Context) {
	if h.exports == nil || !h.exports.Enabled() {
		respondError(c, h.log, service.ErrExportUnavailable)
		return
	}

	var req types.ExportHistoryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "body", "must be a valid export request")
			return
		}
	}

	export, err := h.exports.ExportHistory(c.Request.Context(), middleware.UserID(c), req.Days)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"export": export})
}
