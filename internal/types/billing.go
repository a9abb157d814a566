package types

import (
	"time"

	ierr "github.com/cohortly/cohortly/internal/errors"
)

// BillingCycle is the period one subscription payment covers.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

func (c BillingCycle) Validate() error {
	switch c {
	case BillingCycleMonthly, BillingCycleYearly:
		return nil
	default:
		return ierr.NewErrorf("invalid billing cycle: %s", c).
			WithHint("Billing cycle must be monthly or yearly").
			Mark(ierr.ErrValidation)
	}
}

// Period returns the end of one billing period starting at from.
func (c BillingCycle) Period(from time.Time) time.Time {
	if c == BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// DefaultCurrency is the ISO code all amounts are charged in.
const DefaultCurrency = "INR"

// MinorUnitFactor converts whole currency units to the gateway's minor units.
const MinorUnitFactor = 100

// EnrollmentStatus tracks the lifecycle of a cohort purchase record.
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusFailed    EnrollmentStatus = "failed"
)

// AccountRole is the capability tag resolved once at the boundary. All roles
// share a single stored account shape; behavior differences are decided off
// this tag instead of per-role lookups.
type AccountRole string

const (
	AccountRoleStudent      AccountRole = "student"
	AccountRoleMentor       AccountRole = "mentor"
	AccountRoleOrganization AccountRole = "organization"
	AccountRoleAdmin        AccountRole = "admin"
)
