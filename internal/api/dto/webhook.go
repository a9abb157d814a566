package dto

import (
	"encoding/json"

	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

// Webhook event kinds. Anything else is acknowledged and ignored.
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
)

// WebhookEvent is the typed shape of a gateway notification.
type WebhookEvent struct {
	Event     string         `json:"event"`
	AccountID string         `json:"account_id,omitempty"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

type WebhookPayload struct {
	Payment struct {
		Entity PaymentEntity `json:"entity"`
	} `json:"payment"`
	Order struct {
		Entity OrderEntity `json:"entity"`
	} `json:"order"`
}

// PaymentEntity is the gateway's payment object. Notes carries the checkout
// metadata echoed back from order creation.
type PaymentEntity struct {
	ID          string            `json:"id"`
	OrderID     string            `json:"order_id"`
	Status      string            `json:"status"`
	Method      string            `json:"method"`
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Email       string            `json:"email"`
	Contact     string            `json:"contact"`
	Notes       map[string]string `json:"notes"`
}

type OrderEntity struct {
	ID          string            `json:"id"`
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	Notes       map[string]string `json:"notes"`
}

// IsCheckoutCompleted reports whether this event kind signals a completed
// payment the reconciliation engine must act on.
func (e *WebhookEvent) IsCheckoutCompleted() bool {
	return e.Event == EventPaymentCaptured || e.Event == EventOrderPaid
}

// CheckoutMetadata decodes and validates the echoed metadata. A failure here
// is permanent: the payload will be identical on every retry.
func (e *WebhookEvent) CheckoutMetadata() (*types.CheckoutMetadata, error) {
	notes := e.Payload.Payment.Entity.Notes
	if len(notes) == 0 {
		notes = e.Payload.Order.Entity.Notes
	}
	return types.CheckoutMetadataFromNotes(notes)
}

// DecodeWebhookEvent parses raw, already-verified webhook bytes into a typed
// event. Signature verification must have happened before this call.
func DecodeWebhookEvent(raw []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Webhook body is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	if event.Event == "" {
		return nil, ierr.NewError("webhook event kind is missing").
			WithHint("Webhook body has an unexpected shape").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}
