package v1

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/signalforge/signalforge/internal/api/dto"
	"github.com/signalforge/signalforge/internal/config"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/service"
)

type WebhookHandler struct {
	cfg            *config.Configuration
	reconciliation service.ReconciliationService
	log            *logger.Logger
}

func NewWebhookHandler(cfg *config.Configuration, reconciliation service.ReconciliationService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:            cfg,
		reconciliation: reconciliation,
		log:            log,
	}
}

// HandleStripeWebhook verifies and dispatches provider events. Delivery is
// acknowledged only after the authoritative identity-store write succeeded;
// on failure we return 5xx and rely on provider-side redelivery as the
// recovery mechanism.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.cfg.Stripe.WebhookSecret)
	if err != nil {
		h.log.Warnw("webhook signature verification failed", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	log := h.log.With("event_id", event.ID, "event_type", event.Type)

	switch event.Type {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		err = h.handleSubscriptionEvent(c, event)
	case "checkout.session.completed":
		err = h.handleCheckoutCompleted(c, event)
	default:
		log.Debugw("ignoring webhook event")
	}

	if err != nil {
		log.Errorw("webhook processing failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}

// handleSubscriptionEvent re-retrieves the subscription rather than trusting
// the embedded object: webhook payloads carry bare references where the
// extractor needs the latest invoice and schedule phases.
func (h *WebhookHandler) handleSubscriptionEvent(c *gin.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return ierr.WithError(err).
			WithHint("Malformed subscription event payload").
			Mark(ierr.ErrValidation)
	}

	_, err := h.reconciliation.SyncSubscriptionByID(c.Request.Context(), sub.ID)
	return err
}

func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return ierr.WithError(err).
			WithHint("Malformed checkout session payload").
			Mark(ierr.ErrValidation)
	}

	if session.Subscription != nil && session.Subscription.ID != "" {
		_, err := h.reconciliation.SyncSubscriptionByID(c.Request.Context(), session.Subscription.ID)
		return err
	}

	// One-time checkouts carry the internal user id as the client
	// reference; fall back to a full user sync.
	if session.ClientReferenceID != "" {
		_, err := h.reconciliation.SyncUser(c.Request.Context(), session.ClientReferenceID)
		return err
	}

	h.log.Warnw("checkout session without subscription or client reference",
		"session_id", session.ID)
	return nil
}
