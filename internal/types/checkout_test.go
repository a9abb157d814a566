package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/cohortly/cohortly/internal/errors"
)

func TestCheckoutMetadataRoundTrip(t *testing.T) {
	m := &CheckoutMetadata{
		Kind:         CheckoutKindSubscription,
		AccountID:    "acc_1",
		PlanID:       "plan_pro",
		BillingCycle: BillingCycleYearly,
		Description:  "Pro plan (yearly)",
	}

	notes := m.ToNotes()
	// The gateway echoes notes back as strings.
	echoed := make(map[string]string, len(notes))
	for k, v := range notes {
		echoed[k] = v.(string)
	}

	decoded, err := CheckoutMetadataFromNotes(echoed)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestCheckoutMetadataValidate(t *testing.T) {
	tests := []struct {
		name string
		meta CheckoutMetadata
		ok   bool
	}{
		{
			name: "valid subscription",
			meta: CheckoutMetadata{Kind: CheckoutKindSubscription, AccountID: "acc_1", PlanID: "plan_1", BillingCycle: BillingCycleMonthly},
			ok:   true,
		},
		{
			name: "valid cohort",
			meta: CheckoutMetadata{Kind: CheckoutKindCohort, AccountID: "acc_1", CohortID: "coh_1"},
			ok:   true,
		},
		{
			name: "missing account",
			meta: CheckoutMetadata{Kind: CheckoutKindSubscription, PlanID: "plan_1", BillingCycle: BillingCycleMonthly},
		},
		{
			name: "subscription without plan",
			meta: CheckoutMetadata{Kind: CheckoutKindSubscription, AccountID: "acc_1", BillingCycle: BillingCycleMonthly},
		},
		{
			name: "subscription with bogus cycle",
			meta: CheckoutMetadata{Kind: CheckoutKindSubscription, AccountID: "acc_1", PlanID: "plan_1", BillingCycle: "weekly"},
		},
		{
			name: "cohort without cohort id",
			meta: CheckoutMetadata{Kind: CheckoutKindCohort, AccountID: "acc_1"},
		},
		{
			name: "unknown kind",
			meta: CheckoutMetadata{Kind: "donation", AccountID: "acc_1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.meta.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestCheckoutMetadataFromNotesEmpty(t *testing.T) {
	_, err := CheckoutMetadataFromNotes(nil)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
