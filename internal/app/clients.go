package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/veriflow-backend/internal/clients/agent"
	"github.com/yungbote/veriflow-backend/internal/clients/gcp"
	"github.com/yungbote/veriflow-backend/internal/clients/sendgrid"
	"github.com/yungbote/veriflow-backend/internal/clients/twilio"
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
)

type Clients struct {
	Twilio        twilio.Client
	SendGrid      sendgrid.Client
	ContractAgent agent.Client
	ObjectChecker gcp.ObjectChecker
}

// wireClients builds the outbound clients. Twilio and SendGrid are optional
// (nil means the corresponding notifications are skipped, never fatal); the
// contract agent is required because the pipeline cannot do anything
// without it.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var c Clients

	if strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")) != "" {
		tw, err := twilio.NewFromEnv(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init twilio client: %w", err)
		}
		c.Twilio = tw
	} else {
		log.Warn("Twilio not configured; SMS notifications disabled")
	}

	if strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")) != "" {
		sg, err := sendgrid.NewFromEnv(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		c.SendGrid = sg
	} else {
		log.Warn("SendGrid not configured; email notifications disabled")
	}

	ag, err := agent.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init contract agent client: %w", err)
	}
	c.ContractAgent = ag

	if cfg.CheckSourceObjects {
		oc, err := gcp.NewObjectChecker(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init object checker: %w", err)
		}
		c.ObjectChecker = oc
	}

	return c, nil
}
