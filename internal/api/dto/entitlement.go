package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cohortly/cohortly/internal/domain/account"
	"github.com/cohortly/cohortly/internal/domain/cohort"
	"github.com/cohortly/cohortly/internal/domain/enrollment"
	"github.com/cohortly/cohortly/internal/domain/plan"
	"github.com/cohortly/cohortly/internal/types"
)

// SubscriptionResponse is the read-side view of an account's subscription.
type SubscriptionResponse struct {
	PlanID       string             `json:"plan_id,omitempty"`
	PlanName     string             `json:"plan_name,omitempty"`
	BillingCycle types.BillingCycle `json:"billing_cycle,omitempty"`
	StartAt      *time.Time         `json:"start_at,omitempty"`
	ExpiryAt     *time.Time         `json:"expiry_at,omitempty"`
	Active       bool               `json:"active"`
	Expired      bool               `json:"expired"`
}

// EnrollmentResponse is one paid cohort purchase.
type EnrollmentResponse struct {
	CohortID   string          `json:"cohort_id"`
	CohortName string          `json:"cohort_name,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	PaidAt     time.Time       `json:"paid_at"`
}

// AccountEntitlementsResponse is the full entitlement snapshot for an account.
type AccountEntitlementsResponse struct {
	AccountID    string                `json:"account_id"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
	Enrollments  []EnrollmentResponse  `json:"enrollments"`
}

// NewSubscriptionResponse builds the subscription view; p may be nil when the
// plan reference is dangling or absent.
func NewSubscriptionResponse(a *account.Account, p *plan.Plan) *SubscriptionResponse {
	if a.PlanID == "" {
		return nil
	}

	resp := &SubscriptionResponse{
		PlanID:       a.PlanID,
		BillingCycle: a.Subscription.BillingCycle,
		Active:       a.Subscription.Active,
		Expired:      a.Subscription.Expired,
	}
	if p != nil {
		resp.PlanName = p.Name
	}
	if !a.Subscription.StartAt.IsZero() {
		resp.StartAt = &a.Subscription.StartAt
	}
	if !a.Subscription.ExpiryAt.IsZero() {
		resp.ExpiryAt = &a.Subscription.ExpiryAt
	}
	return resp
}

// NewEnrollmentResponse builds one enrollment view; c may be nil.
func NewEnrollmentResponse(e *enrollment.Enrollment, c *cohort.Cohort) EnrollmentResponse {
	resp := EnrollmentResponse{
		CohortID: e.CohortID,
		Amount:   e.Amount,
		Currency: e.Currency,
		PaidAt:   e.CreatedAt,
	}
	if c != nil {
		resp.CohortName = c.Name
	}
	return resp
}

// PlanResponse is the admin read view of a plan.
type PlanResponse struct {
	Plan *plan.Plan `json:"plan"`
}

// CohortResponse is the admin read view of a cohort.
type CohortResponse struct {
	Cohort *cohort.Cohort `json:"cohort"`
}
