package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/veriflow-backend/internal/server"
)

func wireRouter(cfg Config, handlers Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		StripeWebhookHandler: handlers.StripeWebhook,
		ContractEventHandler: handlers.ContractEvent,
		NudgeHandler:         handlers.Nudge,
		AllowOrigins:         cfg.AllowOrigins,
	})
}
