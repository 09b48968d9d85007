package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/services"
)

// StripeWebhookHandler terminates the payment provider's webhook. Only a
// signature-verification failure may answer non-2xx; once the payload is
// authentic we always acknowledge, otherwise the provider redelivers
// endlessly on our internal failures.
type StripeWebhookHandler struct {
	log      *logger.Logger
	checkout services.CheckoutService
	secret   string
}

func NewStripeWebhookHandler(log *logger.Logger, checkout services.CheckoutService, secret string) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		log:      log.With("handler", "StripeWebhookHandler"),
		checkout: checkout,
		secret:   secret,
	}
}

func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warn("Webhook body read failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.secret)
	if err != nil {
		h.log.Warn("Webhook signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			h.log.Error("Checkout session decode failed", "event_id", event.ID, "error", err)
			break
		}
		cs := services.CheckoutSession{ClientReferenceID: sess.ClientReferenceID}
		if sess.Customer != nil {
			cs.Customer = sess.Customer.ID
		}
		if sess.CustomerDetails != nil {
			cs.Email = sess.CustomerDetails.Email
		}
		h.checkout.HandleSessionCompleted(c.Request.Context(), cs)
	default:
		h.log.Debug("Unhandled webhook event type", "type", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
