package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/infra/payment"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const maxWebhookBody = 1 << 20

var (
	errWebhookNotConfigured = errors.New("stripe webhook secret not configured")
	errMissingSignature     = errors.New("missing Stripe-Signature header")
)

// StripeWebhookHandler turns processor events into booking transitions.
// The signature is the only authentication.
type StripeWebhookHandler struct {
	cmds      commands.BookingCommands
	secret    string
	tolerance time.Duration
	logger    *slog.Logger
}

func NewStripeWebhookHandler(cmds commands.BookingCommands, cfg config.StripeConfig, logger *slog.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		cmds:      cmds,
		secret:    cfg.WebhookSecret,
		tolerance: cfg.WebhookTolerance,
		logger:    logger,
	}
}

// @Summary Stripe webhook
// @Description Receives payment_intent.succeeded and charge.refunded events
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} map[string]string
// @Failure 400 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /payments/stripe/webhook [post]
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	if strings.TrimSpace(h.secret) == "" {
		httperr.AbortWithError(c, http.StatusServiceUnavailable, errWebhookNotConfigured, "Stripe webhook not configured", nil)
		return
	}
	sig := c.GetHeader("Stripe-Signature")
	if strings.TrimSpace(sig) == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errMissingSignature, "Missing Stripe-Signature header", nil)
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Failed to read request body", nil)
		return
	}
	evt, err := webhook.ConstructEventWithTolerance(body, sig, h.secret, h.tolerance)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid signature", nil)
		return
	}

	log := h.logger.With("provider_event_id", evt.ID, "event_type", string(evt.Type))
	log.Info("payment event received")

	switch evt.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		err = h.paymentSucceeded(c, evt.Data.Raw)
	case stripe.EventTypeChargeRefunded:
		err = h.chargeRefunded(c, evt.Data.Raw)
	default:
		log.Debug("payment event ignored")
	}

	if err != nil {
		// Stripe redelivers on non-2xx; only retry what may succeed later.
		if errs.Is(err, errs.ErrDependencyUnavailable) || !isClientError(err) {
			log.Error("payment event failed", "error", err)
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to apply payment event", nil)
			return
		}
		log.Warn("payment event not applicable", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *StripeWebhookHandler) paymentSucceeded(c *gin.Context, raw json.RawMessage) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return errs.Mark(errs.Wrap(err, "decode payment intent"), errs.ErrValidation)
	}
	bookingID, err := uuid.Parse(pi.Metadata[payment.MetadataBookingID])
	if err != nil {
		return errs.Mark(errs.Wrap(err, "payment intent without booking id"), errs.ErrValidation)
	}
	_, err = h.cmds.Confirm(c.Request.Context(), bookingID, pi.ID)
	return err
}

func (h *StripeWebhookHandler) chargeRefunded(c *gin.Context, raw json.RawMessage) error {
	var ch stripe.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return errs.Mark(errs.Wrap(err, "decode charge"), errs.ErrValidation)
	}
	if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
		return errs.Validation("charge without payment intent")
	}
	_, err := h.cmds.ConfirmRefund(c.Request.Context(), ch.PaymentIntent.ID, ch.AmountRefunded)
	return err
}

func isClientError(err error) bool {
	return errs.Is(err, errs.ErrValidation) ||
		errs.Is(err, errs.ErrNotFound) ||
		errs.Is(err, errs.ErrConflict) ||
		errs.Is(err, errs.ErrForbidden)
}
