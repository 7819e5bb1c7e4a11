package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/service"
)

// ViewsHandler streams "view is stale" notifications to the browser as
// server-sent events.
type ViewsHandler struct {
	views service.StaleViewsSubscriber
	log   *logger.Logger
}

func NewViewsHandler(views service.StaleViewsSubscriber, log *logger.Logger) *ViewsHandler {
	return &ViewsHandler{views: views, log: log}
}

func (h *ViewsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/views/stream", h.Stream)
}

func (h *ViewsHandler) Stream(c *gin.Context) {
	if h.views == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unavailable", "message": "live updates are not configured"})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	msgs, err := h.views.Subscribe(ctx, userID)
	if err != nil {
		h.log.Warn("subscribing to view invalidations failed", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unavailable", "message": "live updates are unavailable"})
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-msgs:
			if !ok {
				return false
			}
			c.SSEvent("stale", msg)
			return true
		}
	})
}
