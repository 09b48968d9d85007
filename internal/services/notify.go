package services

import (
	"context"

	"github.com/yungbote/veriflow-backend/internal/clients/agent"
	"github.com/yungbote/veriflow-backend/internal/clients/sendgrid"
	"github.com/yungbote/veriflow-backend/internal/clients/twilio"
)

// The services take these narrow interfaces instead of the concrete clients
// so tests can substitute fakes and so a nil value cleanly means "not
// configured" — the production twilio/sendgrid/agent clients satisfy them
// as-is.

type SMSSender interface {
	SendSMS(ctx context.Context, to string, body string) (*twilio.Message, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg sendgrid.Email) error
}

type ContractAgent interface {
	ProcessContract(ctx context.Context, req agent.ProcessRequest) error
}

// ObjectChecker verifies an uploaded source object exists before the agent
// is invoked. Optional; nil skips the check.
type ObjectChecker interface {
	Exists(ctx context.Context, gcsPath string) (bool, error)
}
