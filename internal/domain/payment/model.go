package payment

import (
	"time"

	"github.com/cohortly/cohortly/internal/types"
)

// Payment is one row of the processed-payments ledger for subscription
// purchases. The gateway payment id is the primary key, so redelivery of any
// previously applied payment is detectable no matter how many payments have
// landed in between.
type Payment struct {
	// ID is the gateway payment id.
	ID string `json:"id"`

	AccountID    string             `json:"account_id"`
	PlanID       string             `json:"plan_id"`
	OrderID      string             `json:"order_id,omitempty"`
	BillingCycle types.BillingCycle `json:"billing_cycle"`

	CreatedAt time.Time `json:"created_at"`
}
