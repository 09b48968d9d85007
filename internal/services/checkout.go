package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yungbote/veriflow-backend/internal/clients/sendgrid"
	pkgerrors "github.com/yungbote/veriflow-backend/internal/pkg/errors"
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/store"
	"github.com/yungbote/veriflow-backend/internal/types"
)

const (
	welcomeSubject = "Welcome to Veriflow"
	welcomeText    = "Thanks for signing up. Upload your first contract and we'll take it from there."
	welcomeHTML    = "<p>Thanks for signing up. Upload your first contract and we'll take it from there.</p>"
)

// CheckoutSession is the slice of a payment-completed webhook event this
// pipeline cares about.
type CheckoutSession struct {
	Customer          string
	ClientReferenceID string
	Email             string
}

// CheckoutService provisions a user record exactly once per customer id.
type CheckoutService interface {
	// HandleSessionCompleted never surfaces internal failures to the caller:
	// the webhook layer must answer 2xx regardless, or the provider retries
	// forever. Everything that goes wrong is logged instead.
	HandleSessionCompleted(ctx context.Context, sess CheckoutSession)
}

type checkoutService struct {
	log   *logger.Logger
	store store.Store
	email EmailSender
	now   func() time.Time
}

func NewCheckoutService(log *logger.Logger, st store.Store, email EmailSender) CheckoutService {
	return &checkoutService{
		log:   log.With("service", "CheckoutService"),
		store: st,
		email: email,
		now:   time.Now,
	}
}

func (s *checkoutService) HandleSessionCompleted(ctx context.Context, sess CheckoutSession) {
	customerID := strings.TrimSpace(sess.Customer)
	if customerID == "" {
		customerID = strings.TrimSpace(sess.ClientReferenceID)
	}
	if customerID == "" {
		// Malformed events are dropped, not retried.
		s.log.Warn("Checkout session has no customer id, dropping event")
		return
	}

	log := s.log.With("customer_id", customerID)

	if _, err := s.store.GetUser(ctx, customerID); err == nil {
		// Webhook redelivery. The record already exists; nothing to do.
		log.Info("User already provisioned, skipping")
		return
	} else if !errors.Is(err, pkgerrors.ErrNotFound) {
		log.Error("User lookup failed", "error", err)
		return
	}

	u, err := types.NewUser(customerID, sess.Email, s.now())
	if err != nil {
		log.Error("Invalid user record", "error", err)
		return
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, pkgerrors.ErrAlreadyExists) {
			// Lost a race with a concurrent redelivery. Same outcome.
			log.Info("User created concurrently, skipping")
			return
		}
		log.Error("User provisioning failed", "error", err)
		return
	}
	log.Info("User provisioned", "email", u.Email)

	// The welcome mail is best-effort: the user record is already committed
	// and a send failure must not affect the provisioning result.
	if u.Email == "" || s.email == nil {
		return
	}
	err = s.email.SendEmail(ctx, sendgrid.Email{
		To:      u.Email,
		Subject: welcomeSubject,
		Text:    welcomeText,
		HTML:    welcomeHTML,
	})
	if err != nil {
		log.Warn("Welcome email failed", "error", err)
		return
	}
	log.Info("Welcome email sent")
}
