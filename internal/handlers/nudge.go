package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/services"
)

// NudgeHandler exposes the inactivity scan as an HTTP task endpoint so an
// external scheduler can drive it.
type NudgeHandler struct {
	log   *logger.Logger
	nudge services.NudgeService
}

func NewNudgeHandler(log *logger.Logger, nudge services.NudgeService) *NudgeHandler {
	return &NudgeHandler{
		log:   log.With("handler", "NudgeHandler"),
		nudge: nudge,
	}
}

func (h *NudgeHandler) Run(c *gin.Context) {
	rep, err := h.nudge.RunOnce(c.Request.Context())
	if err != nil {
		h.log.Error("Nudge run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}
