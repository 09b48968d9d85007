package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/veriflow-backend/internal/clients/agent"
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/store"
	"github.com/yungbote/veriflow-backend/internal/types"
)

const reportReadySMS = "Your Verified Report is ready."

// ContractEvent is a store document-created event for a contract, reduced
// to the two things the handler needs: the triggering resource name and the
// gcsPath field from the created document.
type ContractEvent struct {
	Resource string
	GCSPath  string
}

// ContractService reacts to contract creation: it hands the uploaded
// document to the processing agent and propagates the outcome back into the
// store plus a best-effort SMS.
type ContractService interface {
	HandleCreated(ctx context.Context, ev ContractEvent)
}

type contractService struct {
	log     *logger.Logger
	store   store.Store
	agent   ContractAgent
	sms     SMSSender
	objects ObjectChecker
	now     func() time.Time
}

func NewContractService(log *logger.Logger, st store.Store, ag ContractAgent, sms SMSSender, objects ObjectChecker) ContractService {
	return &contractService{
		log:     log.With("service", "ContractService"),
		store:   st,
		agent:   ag,
		sms:     sms,
		objects: objects,
		now:     time.Now,
	}
}

func (s *contractService) HandleCreated(ctx context.Context, ev ContractEvent) {
	path, ok := types.ParseContractPath(ev.Resource)
	if !ok {
		// Permanently malformed; raising would only cause a retry storm.
		s.log.Error("Invalid contract resource name, dropping event", "resource", ev.Resource)
		return
	}

	log := s.log.With("user_id", path.UserID, "contract_id", path.ContractID)

	if ev.GCSPath == "" {
		log.Error("Contract document has no gcsPath")
		s.markError(ctx, log, path, "Missing gcsPath")
		return
	}

	if s.objects != nil {
		exists, err := s.objects.Exists(ctx, ev.GCSPath)
		if err != nil {
			// The check is an optimization; an inconclusive answer must not
			// block processing.
			log.Warn("Source object check inconclusive, continuing", "gcs_path", ev.GCSPath, "error", err)
		} else if !exists {
			log.Error("Source object missing", "gcs_path", ev.GCSPath)
			s.markError(ctx, log, path, fmt.Sprintf("Source object not found: %s", ev.GCSPath))
			return
		}
	}

	log.Info("Calling contract agent", "gcs_path", ev.GCSPath)
	err := s.agent.ProcessContract(ctx, agent.ProcessRequest{
		UserID:     path.UserID,
		ContractID: path.ContractID,
		GCSPath:    ev.GCSPath,
	})
	if err != nil {
		log.Error("Contract processing failed", "error", err)
		s.markError(ctx, log, path, err.Error())
		return
	}

	// Contract status and user activation flip together or not at all.
	if err := s.store.CommitReportReady(ctx, path, s.now()); err != nil {
		log.Error("Report-ready commit failed", "error", err)
		s.markError(ctx, log, path, err.Error())
		return
	}
	log.Info("Contract report ready")

	// The report being ready is the durable fact; the SMS is best-effort
	// and must never roll it back.
	s.notifyReportReady(ctx, log, path.UserID)
}

func (s *contractService) markError(ctx context.Context, log *logger.Logger, path types.ContractPath, msg string) {
	if err := s.store.MarkContractError(ctx, path, msg); err != nil {
		log.Error("Contract error write failed", "error", err)
	}
}

func (s *contractService) notifyReportReady(ctx context.Context, log *logger.Logger, userID string) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		log.Warn("User fetch for report-ready SMS failed", "error", err)
		return
	}
	if u.PhoneNumber == "" {
		log.Info("User has no phone number, skipping report-ready SMS")
		return
	}
	if s.sms == nil {
		log.Warn("SMS sender not configured, skipping report-ready SMS")
		return
	}
	if _, err := s.sms.SendSMS(ctx, u.PhoneNumber, reportReadySMS); err != nil {
		log.Warn("Report-ready SMS failed", "error", err)
		return
	}
	log.Info("Report-ready SMS sent")
}
