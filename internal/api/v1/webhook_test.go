package v1

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/cohortly/cohortly/internal/api/dto"
	"github.com/cohortly/cohortly/internal/config"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/integration/razorpay"
	"github.com/cohortly/cohortly/internal/logger"
	"github.com/cohortly/cohortly/internal/service"
	"github.com/cohortly/cohortly/internal/types"
)

// stubReconciler lets handler tests script the reconciliation result.
type stubReconciler struct {
	outcome service.Outcome
	err     error
	calls   int
}

func (r *stubReconciler) ProcessEvent(_ context.Context, _ *dto.WebhookEvent, _ []byte) (service.Outcome, error) {
	r.calls++
	return r.outcome, r.err
}

type WebhookHandlerSuite struct {
	suite.Suite
	cfg        *config.Configuration
	reconciler *stubReconciler
	router     *gin.Engine
}

func TestWebhookHandler(t *testing.T) {
	suite.Run(t, new(WebhookHandlerSuite))
}

func (s *WebhookHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.cfg = config.GetDefaultConfig()
	log, err := logger.NewLogger(s.cfg)
	s.Require().NoError(err)

	s.reconciler = &stubReconciler{outcome: service.OutcomeApplied}
	handler := NewWebhookHandler(razorpay.NewVerifier(s.cfg, log), s.reconciler, log)

	s.router = gin.New()
	s.router.POST("/webhooks/razorpay", handler.HandleRazorpayWebhook)
}

func (s *WebhookHandlerSuite) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.Razorpay.WebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *WebhookHandlerSuite) post(payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(types.HeaderRazorpaySignature, signature)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func validPayload() []byte {
	return []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_001",
					"order_id": "order_001",
					"amount": 212300,
					"currency": "INR",
					"notes": {
						"checkout_kind": "subscription",
						"account_id": "acc_1",
						"plan_id": "plan_pro",
						"billing_cycle": "monthly"
					}
				}
			}
		},
		"created_at": 1756339200
	}`)
}

func (s *WebhookHandlerSuite) TestValidEventIsAcknowledged() {
	payload := validPayload()
	w := s.post(payload, s.sign(payload))

	s.Equal(http.StatusOK, w.Code)
	s.Equal(1, s.reconciler.calls)
	s.Contains(w.Body.String(), `"received":true`)
	s.Contains(w.Body.String(), `"outcome":"applied"`)
}

func (s *WebhookHandlerSuite) TestBadSignatureIsRejectedBeforeParsing() {
	payload := validPayload()
	w := s.post(payload, "deadbeef")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(0, s.reconciler.calls, "unverified payload must never reach the reconciler")
}

func (s *WebhookHandlerSuite) TestMissingSignatureIsRejected() {
	payload := validPayload()
	w := s.post(payload, "")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(0, s.reconciler.calls)
}

func (s *WebhookHandlerSuite) TestMalformedBodyIsAcknowledged() {
	// Retrying a malformed body reproduces it; the handler must ack it so
	// the gateway stops redelivering.
	payload := []byte(`{"event":`)
	w := s.post(payload, s.sign(payload))

	s.Equal(http.StatusOK, w.Code)
	s.Equal(0, s.reconciler.calls)
}

func (s *WebhookHandlerSuite) TestPermanentFailureIsAcknowledged() {
	s.reconciler.outcome = service.OutcomeIgnored
	s.reconciler.err = ierr.NewError("plan not found").Mark(ierr.ErrNotFound)

	payload := validPayload()
	w := s.post(payload, s.sign(payload))

	s.Equal(http.StatusOK, w.Code)
}

func (s *WebhookHandlerSuite) TestTransientFailureAsksForRetry() {
	s.reconciler.outcome = service.OutcomeIgnored
	s.reconciler.err = ierr.NewError("write conflict").Mark(ierr.ErrDatabase)

	payload := validPayload()
	w := s.post(payload, s.sign(payload))

	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *WebhookHandlerSuite) TestDuplicateDeliveryIsAcknowledged() {
	s.reconciler.outcome = service.OutcomeDuplicate

	payload := validPayload()
	w := s.post(payload, s.sign(payload))

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"outcome":"duplicate"`)
}

func TestDecodeWebhookEvent(t *testing.T) {
	event, err := dto.DecodeWebhookEvent(validPayload())
	require.NoError(t, err)
	assert.Equal(t, dto.EventPaymentCaptured, event.Event)
	assert.True(t, event.IsCheckoutCompleted())
	assert.Equal(t, "pay_001", event.Payload.Payment.Entity.ID)

	meta, err := event.CheckoutMetadata()
	require.NoError(t, err)
	assert.Equal(t, types.CheckoutKindSubscription, meta.Kind)
	assert.Equal(t, "acc_1", meta.AccountID)

	_, err = dto.DecodeWebhookEvent([]byte(`{"payload":{}}`))
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
