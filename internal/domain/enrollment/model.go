package enrollment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cohortly/cohortly/internal/types"
)

// Enrollment records a one-time cohort purchase. PaymentID is the gateway
// payment id and doubles as the idempotency key: at most one paid enrollment
// exists per (account, cohort, payment id).
type Enrollment struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	CohortID  string `json:"cohort_id"`

	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	IsPaid        bool   `json:"is_paid"`

	Amount   decimal.Decimal        `json:"amount"`
	Currency string                 `json:"currency"`
	Status   types.EnrollmentStatus `json:"status"`

	// RawPayload keeps the gateway notification body for audit.
	RawPayload json.RawMessage `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
