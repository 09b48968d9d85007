package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/store"
	"github.com/yungbote/veriflow-backend/internal/types"
)

// nudgeBatchSize bounds every scheduler pass to one store query page. Fixed
// by design, not configuration.
const nudgeBatchSize = 500

const (
	nudgeChannelSMS = "sms"
	nudgeBodyTierA  = "Hey, I noticed you haven't uploaded a contract. Reply with your PDF."
	nudgeBodyTierB  = "Is there an issue? Click here to book a 5-min fix call."
)

type NudgeConfig struct {
	ThresholdA  time.Duration
	ThresholdB  time.Duration
	Concurrency int
}

// NudgeReport summarizes one scheduler pass.
type NudgeReport struct {
	Scanned int `json:"scanned"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// NudgeService scans stalled signed_up users and escalates reminders.
type NudgeService interface {
	// RunOnce returns an error only when the scan itself cannot run (the
	// store query fails). Per-user failures are logged, counted in the
	// report, and left for the next pass to retry.
	RunOnce(ctx context.Context) (NudgeReport, error)
}

type nudgeService struct {
	log   *logger.Logger
	store store.Store
	sms   SMSSender
	cfg   NudgeConfig
	now   func() time.Time
}

func NewNudgeService(log *logger.Logger, st store.Store, sms SMSSender, cfg NudgeConfig) NudgeService {
	if cfg.ThresholdA <= 0 {
		cfg.ThresholdA = 24 * time.Hour
	}
	if cfg.ThresholdB <= 0 {
		cfg.ThresholdB = 72 * time.Hour
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 16
	}
	return &nudgeService{
		log:   log.With("service", "NudgeService"),
		store: st,
		sms:   sms,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *nudgeService) RunOnce(ctx context.Context) (NudgeReport, error) {
	now := s.now()

	users, err := s.store.ListSignedUpUsers(ctx, nudgeBatchSize)
	if err != nil {
		return NudgeReport{}, err
	}
	if len(users) == 0 {
		s.log.Info("No users to process")
		return NudgeReport{}, nil
	}

	var (
		mu  sync.Mutex
		rep = NudgeReport{Scanned: len(users)}
	)

	// Plain errgroup, no shared cancel context: every user is independent
	// and one failing send must not abort the rest of the batch.
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for _, u := range users {
		g.Go(func() error {
			sent, err := s.processUser(ctx, u, now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				rep.Failed++
			case sent:
				rep.Sent++
			default:
				rep.Skipped++
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		// Already logged per user; the pass itself still completed.
		s.log.Warn("Nudge pass finished with failures", "failed", rep.Failed, "error", err)
	}
	s.log.Info("Nudge pass complete",
		"scanned", rep.Scanned,
		"sent", rep.Sent,
		"skipped", rep.Skipped,
		"failed", rep.Failed,
	)
	return rep, nil
}

// processUser applies the per-user tier state machine. Returns whether a
// nudge was sent. Any error means state was left untouched so the next
// scheduled pass retries safely.
func (s *nudgeService) processUser(ctx context.Context, u *types.User, now time.Time) (bool, error) {
	log := s.log.With("user_id", u.ID)

	if u.SignupDate.IsZero() {
		log.Warn("User has no signup date, skipping")
		return false, nil
	}

	elapsed := now.Sub(u.SignupDate)

	var tier types.NudgeStatus
	var body string
	switch {
	case elapsed >= s.cfg.ThresholdB:
		// Tier B fires from either none or nudge_A. A user the scheduler
		// only catches after both windows have elapsed skips straight to
		// tier B; that is intended behavior.
		if u.NudgeStatus != types.NudgeTierB {
			tier, body = types.NudgeTierB, nudgeBodyTierB
		}
	case elapsed >= s.cfg.ThresholdA:
		if u.NudgeStatus == types.NudgeNone {
			tier, body = types.NudgeTierA, nudgeBodyTierA
		}
	}

	if tier == "" {
		return false, nil
	}
	if !u.NudgeStatus.CanAdvanceTo(tier) {
		// nudgeStatus only moves forward; anything else is a stale read.
		log.Warn("Refusing non-forward nudge transition", "from", u.NudgeStatus, "to", tier)
		return false, nil
	}

	if u.PhoneNumber == "" {
		log.Info("User has no phone number, skipping", "tier", tier)
		return false, nil
	}

	if s.sms != nil {
		if _, err := s.sms.SendSMS(ctx, u.PhoneNumber, body); err != nil {
			// Do not advance nudgeStatus or touch the log: the send did not
			// happen and must be retried on the next pass.
			log.Error("Nudge send failed", "tier", tier, "error", err)
			return false, err
		}
	} else {
		log.Warn("SMS sender not configured, skipping send", "tier", tier)
	}

	entry := types.ActivityEntry{
		ID:      uuid.NewString(),
		Type:    string(tier),
		SentAt:  now.UTC(),
		Channel: nudgeChannelSMS,
		Context: body,
	}
	if err := s.store.AdvanceNudge(ctx, u.ID, tier, entry); err != nil {
		log.Error("Nudge state update failed", "tier", tier, "error", err)
		return false, err
	}
	log.Info("Nudge sent", "tier", tier)
	return true, nil
}
