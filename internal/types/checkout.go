package types

import (
	ierr "github.com/cohortly/cohortly/internal/errors"
)

// CheckoutKind discriminates what a payment session purchases.
type CheckoutKind string

const (
	CheckoutKindSubscription CheckoutKind = "subscription"
	CheckoutKindCohort       CheckoutKind = "cohort"
)

// Gateway note keys. The gateway stores notes opaquely and echoes them back
// unmodified on the completion webhook; these keys are the full contract
// between session creation and reconciliation.
const (
	NoteKeyCheckoutKind = "checkout_kind"
	NoteKeyAccountID    = "account_id"
	NoteKeyPlanID       = "plan_id"
	NoteKeyCohortID     = "cohort_id"
	NoteKeyBillingCycle = "billing_cycle"
	NoteKeyDescription  = "description"
)

// CheckoutMetadata is the typed application context attached to a gateway
// order at creation time and read back from the completion notification. It
// is never persisted as its own record; its fields are copied into the
// entitlement records at reconciliation time.
type CheckoutMetadata struct {
	Kind         CheckoutKind `json:"checkout_kind"`
	AccountID    string       `json:"account_id"`
	PlanID       string       `json:"plan_id,omitempty"`
	CohortID     string       `json:"cohort_id,omitempty"`
	BillingCycle BillingCycle `json:"billing_cycle,omitempty"`
	Description  string       `json:"description,omitempty"`
}

// Validate checks the shape expected of echoed-back metadata. A failure here
// is a permanent error: retrying the same notification reproduces the same
// malformed payload.
func (m *CheckoutMetadata) Validate() error {
	if m.AccountID == "" {
		return ierr.NewError("checkout metadata missing account id").
			WithHint("Payment notification metadata is malformed").
			Mark(ierr.ErrValidation)
	}

	switch m.Kind {
	case CheckoutKindSubscription:
		if m.PlanID == "" {
			return ierr.NewError("subscription checkout metadata missing plan id").
				WithHint("Payment notification metadata is malformed").
				Mark(ierr.ErrValidation)
		}
		if err := m.BillingCycle.Validate(); err != nil {
			return err
		}
	case CheckoutKindCohort:
		if m.CohortID == "" {
			return ierr.NewError("cohort checkout metadata missing cohort id").
				WithHint("Payment notification metadata is malformed").
				Mark(ierr.ErrValidation)
		}
	default:
		return ierr.NewErrorf("unknown checkout kind: %s", m.Kind).
			WithHint("Payment notification metadata is malformed").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToNotes flattens the metadata into the string key/value form the gateway
// accepts on order creation.
func (m *CheckoutMetadata) ToNotes() map[string]interface{} {
	notes := map[string]interface{}{
		NoteKeyCheckoutKind: string(m.Kind),
		NoteKeyAccountID:    m.AccountID,
	}
	if m.PlanID != "" {
		notes[NoteKeyPlanID] = m.PlanID
	}
	if m.CohortID != "" {
		notes[NoteKeyCohortID] = m.CohortID
	}
	if m.BillingCycle != "" {
		notes[NoteKeyBillingCycle] = string(m.BillingCycle)
	}
	if m.Description != "" {
		notes[NoteKeyDescription] = m.Description
	}
	return notes
}

// CheckoutMetadataFromNotes decodes and validates metadata echoed back in a
// completion notification.
func CheckoutMetadataFromNotes(notes map[string]string) (*CheckoutMetadata, error) {
	if len(notes) == 0 {
		return nil, ierr.NewError("payment notification carries no metadata").
			WithHint("Payment notification metadata is malformed").
			Mark(ierr.ErrValidation)
	}

	m := &CheckoutMetadata{
		Kind:         CheckoutKind(notes[NoteKeyCheckoutKind]),
		AccountID:    notes[NoteKeyAccountID],
		PlanID:       notes[NoteKeyPlanID],
		CohortID:     notes[NoteKeyCohortID],
		BillingCycle: BillingCycle(notes[NoteKeyBillingCycle]),
		Description:  notes[NoteKeyDescription],
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
