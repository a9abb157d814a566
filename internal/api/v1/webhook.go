package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cohortly/cohortly/internal/api/dto"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/integration/razorpay"
	"github.com/cohortly/cohortly/internal/logger"
	"github.com/cohortly/cohortly/internal/metrics"
	"github.com/cohortly/cohortly/internal/service"
	"github.com/cohortly/cohortly/internal/types"
)

// WebhookHandler receives gateway payment notifications. The response code
// is the only retry signal the gateway understands: 2xx means do not retry,
// anything else means retry later. Permanent failures (malformed metadata,
// dangling plan/cohort references) are therefore acknowledged with 2xx and
// logged loudly instead of being bounced into an infinite retry loop.
type WebhookHandler struct {
	verifier   *razorpay.Verifier
	reconciler service.ReconciliationService
	log        *logger.Logger
}

func NewWebhookHandler(
	verifier *razorpay.Verifier,
	reconciler service.ReconciliationService,
	log *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		reconciler: reconciler,
		log:        log,
	}
}

// HandleRazorpayWebhook handles POST /webhooks/razorpay.
func (h *WebhookHandler) HandleRazorpayWebhook(c *gin.Context) {
	// The signature covers the exact raw bytes; read them before anything
	// touches the body.
	payload, err := c.GetRawData()
	if err != nil {
		h.log.Errorw("failed to read webhook body", "error", err)
		metrics.WebhookEvents.WithLabelValues("unknown", "failed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"received": false})
		return
	}

	signature := c.GetHeader(types.HeaderRazorpaySignature)
	if err := h.verifier.VerifySignature(payload, signature); err != nil {
		h.log.Errorw("webhook signature verification failed",
			"error", err,
			"payload_length", len(payload))
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		c.JSON(http.StatusUnauthorized, ierr.NewErrorResponse(err))
		return
	}

	event, err := dto.DecodeWebhookEvent(payload)
	if err != nil {
		// Retrying reproduces the same malformed payload; ack and alert.
		h.log.Errorw("ALERT: malformed webhook event, manual intervention required",
			"error", err,
			"payload_length", len(payload))
		metrics.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	outcome, err := h.reconciler.ProcessEvent(c.Request.Context(), event, payload)
	if err != nil {
		if ierr.IsPermanent(err) {
			h.log.Errorw("ALERT: permanent reconciliation failure, manual intervention required",
				"event", event.Event,
				"payment_id", event.Payload.Payment.Entity.ID,
				"error", err)
			metrics.WebhookEvents.WithLabelValues(event.Event, "permanent_failure").Inc()
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		// Transient failure: non-2xx so the gateway retries.
		metrics.WebhookEvents.WithLabelValues(event.Event, "failed").Inc()
		c.JSON(http.StatusInternalServerError, ierr.NewErrorResponse(err))
		return
	}

	metrics.WebhookEvents.WithLabelValues(event.Event, string(outcome)).Inc()
	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": outcome})
}
