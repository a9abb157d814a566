package dto

import (
	"github.com/shopspring/decimal"

	"github.com/cohortly/cohortly/internal/types"
	"github.com/cohortly/cohortly/internal/validator"
)

// BillingDetails are the buyer-supplied contact fields attached to a
// checkout. Email and postal code are the minimum the gateway requires.
type BillingDetails struct {
	Email      string `json:"email" validate:"required,email"`
	PostalCode string `json:"postal_code" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CreateSubscriptionCheckoutRequest starts a subscription purchase.
// Amount is display-only client state; the charge is always recomputed
// server-side from the plan record and this field is never read.
type CreateSubscriptionCheckoutRequest struct {
	AccountID    string             `json:"account_id" validate:"required"`
	PlanID       string             `json:"plan_id" validate:"required"`
	BillingCycle types.BillingCycle `json:"billing_cycle" validate:"required"`
	Billing      BillingDetails     `json:"billing" validate:"required"`
	Amount       *decimal.Decimal   `json:"amount,omitempty"`
}

func (r *CreateSubscriptionCheckoutRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingCycle.Validate()
}

// CreateCohortCheckoutRequest starts a one-time cohort purchase. Amount is
// ignored the same way as on subscription checkout.
type CreateCohortCheckoutRequest struct {
	AccountID string           `json:"account_id" validate:"required"`
	CohortID  string           `json:"cohort_id" validate:"required"`
	Billing   BillingDetails   `json:"billing" validate:"required"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

func (r *CreateCohortCheckoutRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CheckoutSessionResponse is the opaque session handle the client redirects
// with. KeyID is the gateway's public key for the hosted checkout widget.
type CheckoutSessionResponse struct {
	OrderID     string `json:"order_id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key_id"`
	Description string `json:"description,omitempty"`
}
