package app

import (
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/services"
	"github.com/yungbote/veriflow-backend/internal/store"
)

type Services struct {
	Checkout services.CheckoutService
	Nudge    services.NudgeService
	Contract services.ContractService
}

func wireServices(log *logger.Logger, cfg Config, st store.Store, clients Clients) Services {
	log.Info("Wiring services...")

	var sms services.SMSSender
	if clients.Twilio != nil {
		sms = clients.Twilio
	}
	var email services.EmailSender
	if clients.SendGrid != nil {
		email = clients.SendGrid
	}
	var objects services.ObjectChecker
	if clients.ObjectChecker != nil {
		objects = clients.ObjectChecker
	}

	return Services{
		Checkout: services.NewCheckoutService(log, st, email),
		Nudge:    services.NewNudgeService(log, st, sms, cfg.Nudge),
		Contract: services.NewContractService(log, st, clients.ContractAgent, sms, objects),
	}
}
