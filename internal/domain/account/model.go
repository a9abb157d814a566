package account

import (
	"time"

	"github.com/cohortly/cohortly/internal/types"
)

// Account is a user capable of holding a subscription and cohort enrollments.
// Identity and profile fields are owned by the auth subsystem; the
// reconciliation engine only writes PlanID, Subscription and EnrolledCohorts.
type Account struct {
	ID    string            `json:"id"`
	Email string            `json:"email"`
	Name  string            `json:"name"`
	Role  types.AccountRole `json:"role"`

	// PlanID is the current plan assignment; empty means no plan.
	PlanID       string           `json:"plan_id,omitempty"`
	Subscription SubscriptionMeta `json:"subscription"`

	// EnrolledCohorts lists cohort ids this account has purchased access to.
	EnrolledCohorts []string `json:"enrolled_cohorts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscriptionMeta is the subscription state attached to an account. Active
// implies ExpiryAt was strictly in the future at the write that set it.
type SubscriptionMeta struct {
	StartAt      time.Time          `json:"start_at,omitempty"`
	ExpiryAt     time.Time          `json:"expiry_at,omitempty"`
	Active       bool               `json:"active"`
	Expired      bool               `json:"expired"`
	BillingCycle types.BillingCycle `json:"billing_cycle,omitempty"`

	// LastPaymentID is the gateway payment id of the most recent payment
	// applied to this subscription. It is the idempotency guard for
	// duplicate webhook deliveries.
	LastPaymentID string `json:"last_payment_id,omitempty"`
}

// HasActiveSubscription reports whether the assignment is live at now.
func (a *Account) HasActiveSubscription(now time.Time) bool {
	return a.PlanID != "" && a.Subscription.Active && a.Subscription.ExpiryAt.After(now)
}

// IsEnrolled reports whether the account already holds access to cohortID.
func (a *Account) IsEnrolled(cohortID string) bool {
	for _, id := range a.EnrolledCohorts {
		if id == cohortID {
			return true
		}
	}
	return false
}
