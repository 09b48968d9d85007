package app

import (
	"github.com/yungbote/veriflow-backend/internal/handlers"
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
)

type Handlers struct {
	StripeWebhook *handlers.StripeWebhookHandler
	ContractEvent *handlers.ContractEventHandler
	Nudge         *handlers.NudgeHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		StripeWebhook: handlers.NewStripeWebhookHandler(log, services.Checkout, cfg.StripeWebhookSecret),
		ContractEvent: handlers.NewContractEventHandler(log, services.Contract),
		Nudge:         handlers.NewNudgeHandler(log, services.Nudge),
	}
}
