package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/cohortly/cohortly/internal/api/dto"
	"github.com/cohortly/cohortly/internal/cache"
	"github.com/cohortly/cohortly/internal/domain/account"
	"github.com/cohortly/cohortly/internal/domain/cohort"
	"github.com/cohortly/cohortly/internal/domain/plan"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/testutil"
	"github.com/cohortly/cohortly/internal/types"
)

type ReconciliationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ReconciliationService
}

func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceSuite))
}

func (s *ReconciliationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewReconciliationService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		AccountRepo:    stores.AccountRepo,
		PlanRepo:       stores.PlanRepo,
		CohortRepo:     stores.CohortRepo,
		EnrollmentRepo: stores.EnrollmentRepo,
		PaymentRepo:    stores.PaymentRepo,
		Gateway:        s.GetGateway(),
	})

	stores.AccountRepo.Set("acc_1", &account.Account{
		ID:    "acc_1",
		Email: "student@example.com",
		Role:  types.AccountRoleStudent,
	})
	stores.PlanRepo.Set("plan_basic", &plan.Plan{
		ID:           "plan_basic",
		Name:         "Basic",
		MonthlyPrice: decimal.NewFromInt(999),
		YearlyPrice:  decimal.NewFromInt(9990),
	})
	stores.PlanRepo.Set("plan_pro", &plan.Plan{
		ID:           "plan_pro",
		Name:         "Pro",
		MonthlyPrice: decimal.NewFromInt(1999),
		YearlyPrice:  decimal.NewFromInt(19990),
	})
	stores.CohortRepo.Set("coh_go", &cohort.Cohort{
		ID:    "coh_go",
		Name:  "Go Bootcamp",
		Price: decimal.NewFromInt(4999),
	})
}

// subscriptionEvent builds a captured-payment event whose notes target the
// given plan, the way the gateway echoes them back.
func subscriptionEvent(paymentID, accountID, planID string, cycle types.BillingCycle) (*dto.WebhookEvent, []byte) {
	event := &dto.WebhookEvent{
		Event:     dto.EventPaymentCaptured,
		CreatedAt: time.Now().Unix(),
	}
	event.Payload.Payment.Entity = dto.PaymentEntity{
		ID:          paymentID,
		OrderID:     "order_" + paymentID,
		Status:      "captured",
		Method:      "upi",
		AmountMinor: 999900,
		Currency:    "INR",
		Notes: map[string]string{
			types.NoteKeyCheckoutKind: string(types.CheckoutKindSubscription),
			types.NoteKeyAccountID:    accountID,
			types.NoteKeyPlanID:       planID,
			types.NoteKeyBillingCycle: string(cycle),
		},
	}
	raw, _ := json.Marshal(event)
	return event, raw
}

func cohortEvent(paymentID, accountID, cohortID string) (*dto.WebhookEvent, []byte) {
	event := &dto.WebhookEvent{
		Event:     dto.EventPaymentCaptured,
		CreatedAt: time.Now().Unix(),
	}
	event.Payload.Payment.Entity = dto.PaymentEntity{
		ID:          paymentID,
		OrderID:     "order_" + paymentID,
		Status:      "captured",
		Method:      "card",
		AmountMinor: 499900,
		Currency:    "INR",
		Notes: map[string]string{
			types.NoteKeyCheckoutKind: string(types.CheckoutKindCohort),
			types.NoteKeyAccountID:    accountID,
			types.NoteKeyCohortID:     cohortID,
		},
	}
	raw, _ := json.Marshal(event)
	return event, raw
}

func (s *ReconciliationServiceSuite) process(event *dto.WebhookEvent, raw []byte) (Outcome, error) {
	return s.service.ProcessEvent(context.Background(), event, raw)
}

func (s *ReconciliationServiceSuite) TestIrrelevantEventIsIgnored() {
	event := &dto.WebhookEvent{Event: "payment.failed"}
	outcome, err := s.process(event, []byte(`{}`))
	s.NoError(err)
	s.Equal(OutcomeIgnored, outcome)
}

func (s *ReconciliationServiceSuite) TestFirstSubscriptionPayment() {
	event, raw := subscriptionEvent("pay_001", "acc_1", "plan_basic", types.BillingCycleMonthly)

	before := time.Now().UTC()
	outcome, err := s.process(event, raw)
	s.NoError(err)
	s.Equal(OutcomeApplied, outcome)

	acc, err := s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	s.Require().NoError(err)
	s.Equal("plan_basic", acc.PlanID)
	s.True(acc.Subscription.Active)
	s.False(acc.Subscription.Expired)
	s.Equal("pay_001", acc.Subscription.LastPaymentID)
	s.Equal(types.BillingCycleMonthly, acc.Subscription.BillingCycle)
	s.WithinDuration(before.AddDate(0, 1, 0), acc.Subscription.ExpiryAt, 5*time.Second)

	p, err := s.GetStores().PlanRepo.Get(context.Background(), "plan_basic")
	s.Require().NoError(err)
	s.True(p.HasSubscriber("acc_1"))
}

func (s *ReconciliationServiceSuite) TestDuplicateSubscriptionDeliveryIsNoOp() {
	event, raw := subscriptionEvent("pay_001", "acc_1", "plan_basic", types.BillingCycleMonthly)

	outcome, err := s.process(event, raw)
	s.Require().NoError(err)
	s.Require().Equal(OutcomeApplied, outcome)

	acc, _ := s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	expiryAfterFirst := acc.Subscription.ExpiryAt

	// Same event delivered again must not extend the subscription.
	outcome, err = s.process(event, raw)
	s.NoError(err)
	s.Equal(OutcomeDuplicate, outcome)

	acc, _ = s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	s.True(acc.Subscription.ExpiryAt.Equal(expiryAfterFirst), "duplicate delivery changed expiry")
}

func (s *ReconciliationServiceSuite) TestRenewalCarriesRemainingTime() {
	// Active on plan_basic with 10 days left.
	now := time.Now().UTC()
	s.GetStores().AccountRepo.Set("acc_1", &account.Account{
		ID:     "acc_1",
		PlanID: "plan_basic",
		Subscription: account.SubscriptionMeta{
			StartAt:       now.AddDate(0, -1, 10),
			ExpiryAt:      now.Add(10 * 24 * time.Hour),
			Active:        true,
			BillingCycle:  types.BillingCycleMonthly,
			LastPaymentID: "pay_000",
		},
	})

	event, raw := subscriptionEvent("pay_002", "acc_1", "plan_basic", types.BillingCycleMonthly)
	outcome, err := s.process(event, raw)
	s.NoError(err)
	s.Equal(OutcomeApplied, outcome)

	acc, _ := s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	s.Equal("pay_002", acc.Subscription.LastPaymentID)
	// New expiry = now + 1 month + the 10 unused days.
	expected := now.AddDate(0, 1, 0).Add(10 * 24 * time.Hour)
	s.WithinDuration(expected, acc.Subscription.ExpiryAt, 5*time.Second)
}

func (s *ReconciliationServiceSuite) TestPlanSwitchForfeitsRemainingTime() {
	now := time.Now().UTC()
	s.GetStores().AccountRepo.Set("acc_1", &account.Account{
		ID:     "acc_1",
		PlanID: "plan_basic",
		Subscription: account.SubscriptionMeta{
			ExpiryAt:      now.Add(20 * 24 * time.Hour),
			Active:        true,
			BillingCycle:  types.BillingCycleMonthly,
			LastPaymentID: "pay_000",
		},
	})
	old, _ := s.GetStores().PlanRepo.Get(context.Background(), "plan_basic")
	old.Subscribers = []string{"acc_1", "acc_2"}
	s.Require().NoError(s.GetStores().PlanRepo.Update(context.Background(), old))

	event, raw := subscriptionEvent("pay_003", "acc_1", "plan_pro", types.BillingCycleYearly)
	outcome, err := s.process(event, raw)
	s.NoError(err)
	s.Equal(OutcomeApplied, outcome)

	acc, _ := s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	s.Equal("plan_pro", acc.PlanID)
	s.Equal(types.BillingCycleYearly, acc.Subscription.BillingCycle)
	// Remaining 20 days are forfeited: expiry is exactly one year out.
	s.WithinDuration(now.AddDate(1, 0, 0), acc.Subscription.ExpiryAt, 5*time.Second)

	oldPlan, _ := s.GetStores().PlanRepo.Get(context.Background(), "plan_basic")
	s.False(oldPlan.HasSubscriber("acc_1"))
	s.True(oldPlan.HasSubscriber("acc_2"), "unrelated subscribers must survive the switch")

	newPlan, _ := s.GetStores().PlanRepo.Get(context.Background(), "plan_pro")
	s.True(newPlan.HasSubscriber("acc_1"))
}

func (s *ReconciliationServiceSuite) TestExpiredPlanPaymentStartsFresh() {
	// An inactive assignment classifies as no-assignment even on the same plan.
	now := time.Now().UTC()
	s.GetStores().AccountRepo.Set("acc_1", &account.Account{
		ID:     "acc_1",
		PlanID: "plan_basic",
		Subscription: account.SubscriptionMeta{
			ExpiryAt:      now.Add(-24 * time.Hour),
			Active:        false,
			Expired:       true,
			BillingCycle:  types.BillingCycleMonthly,
			LastPaymentID: "pay_000",
		},
	})

	event, raw := subscriptionEvent("pay_004", "acc_1", "plan_basic", types.BillingCycleMonthly)
	outcome, err := s.process(event, raw)
	s.NoError(err)
	s.Equal(OutcomeApplied, outcome)

	acc, _ := s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	s.True(acc.Subscription.Active)
	s.False(acc.Subscription.Expired)
	// No carry-over from the lapsed period.
	s.WithinDuration(now.AddDate(0, 1, 0), acc.Subscription.ExpiryAt, 5*time.Second)
}

func (s *ReconciliationServiceSuite) TestSubscriptionUnknownPlanIsPermanent() {
	event, raw := subscriptionEvent("pay_005", "acc_1", "plan_missing", types.BillingCycleMonthly)
	outcome, err := s.process(event, raw)
	s.Error(err)
	s.Equal(OutcomeIgnored, outcome)
	s.True(ierr.IsNotFound(err))
	s.True(ierr.IsPermanent(err))
}

func (s *ReconciliationServiceSuite) TestMalformedMetadataIsPermanent() {
	event, raw := subscriptionEvent("pay_006", "acc_1", "plan_basic", types.BillingCycleMonthly)
	delete(event.Payload.Payment.Entity.Notes, types.NoteKeyAccountID)

	outcome, err := s.process(event, raw)
	s.Error(err)
	s.Equal(OutcomeIgnored, outcome)
	s.True(ierr.IsValidation(err))
	s.True(ierr.IsPermanent(err))
}

func (s *ReconciliationServiceSuite) TestCohortEnrollment() {
	event, raw := cohortEvent("pay_101", "acc_1", "coh_go")
	outcome, err := s.process(event, raw)
	s.NoError(err)
	s.Equal(OutcomeApplied, outcome)

	coh, _ := s.GetStores().CohortRepo.Get(context.Background(), "coh_go")
	s.True(coh.HasMember("acc_1"))

	acc, _ := s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	s.True(acc.IsEnrolled("coh_go"))

	records, err := s.GetStores().EnrollmentRepo.ListByAccount(context.Background(), "acc_1")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("pay_101", records[0].PaymentID)
	s.Equal("coh_go", records[0].CohortID)
	s.True(records[0].IsPaid)
	s.Equal(types.EnrollmentStatusCompleted, records[0].Status)
	s.True(records[0].Amount.Equal(decimal.NewFromInt(4999)))
	s.JSONEq(string(raw), string(records[0].RawPayload))
}

func (s *ReconciliationServiceSuite) TestDuplicateCohortDeliveryIsNoOp() {
	event, raw := cohortEvent("pay_101", "acc_1", "coh_go")

	outcome, err := s.process(event, raw)
	s.Require().NoError(err)
	s.Require().Equal(OutcomeApplied, outcome)

	outcome, err = s.process(event, raw)
	s.NoError(err)
	s.Equal(OutcomeDuplicate, outcome)

	records, _ := s.GetStores().EnrollmentRepo.ListByAccount(context.Background(), "acc_1")
	s.Len(records, 1, "duplicate delivery created a second enrollment")
}

func (s *ReconciliationServiceSuite) TestCohortEnrollmentIsAtomic() {
	s.GetStores().CohortRepo.FailNextRosterUpdate = fmt.Errorf("connection reset")

	event, raw := cohortEvent("pay_102", "acc_1", "coh_go")
	outcome, err := s.process(event, raw)
	s.Error(err)
	s.Equal(OutcomeIgnored, outcome)
	s.False(ierr.IsPermanent(err))

	// The enrollment created before the roster write must be rolled back.
	records, _ := s.GetStores().EnrollmentRepo.ListByAccount(context.Background(), "acc_1")
	s.Empty(records)
	acc, _ := s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	s.False(acc.IsEnrolled("coh_go"))

	// A retry of the exact same event then succeeds cleanly.
	outcome, err = s.process(event, raw)
	s.NoError(err)
	s.Equal(OutcomeApplied, outcome)
}

func (s *ReconciliationServiceSuite) TestRedeliveryAfterInterveningPayment() {
	// Gateway retries can span hours: payment A applied, payment B applied,
	// then A is delivered again. A must stay a no-op.
	eventA, rawA := subscriptionEvent("pay_A", "acc_1", "plan_basic", types.BillingCycleMonthly)
	eventB, rawB := subscriptionEvent("pay_B", "acc_1", "plan_basic", types.BillingCycleMonthly)

	outcome, err := s.process(eventA, rawA)
	s.Require().NoError(err)
	s.Require().Equal(OutcomeApplied, outcome)

	outcome, err = s.process(eventB, rawB)
	s.Require().NoError(err)
	s.Require().Equal(OutcomeApplied, outcome)

	acc, _ := s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	expiryAfterB := acc.Subscription.ExpiryAt

	outcome, err = s.process(eventA, rawA)
	s.NoError(err)
	s.Equal(OutcomeDuplicate, outcome)

	acc, _ = s.GetStores().AccountRepo.Get(context.Background(), "acc_1")
	s.True(acc.Subscription.ExpiryAt.Equal(expiryAfterB),
		"redelivered payment re-extended the subscription")
	s.Equal("pay_B", acc.Subscription.LastPaymentID)
}

func (s *ReconciliationServiceSuite) TestRetryAfterRollbackWithCachedAccounts() {
	// Production wiring reads accounts through the cache decorator. A failed
	// transaction must leave no trace there, or the gateway's retry of the
	// same event would be misclassified as a duplicate and the payment lost.
	stores := s.GetStores()
	cached := account.NewCachedRepository(
		stores.AccountRepo,
		cache.NewInMemoryCache(s.GetConfig(), s.GetLogger()),
		s.GetConfig().Cache.TTL,
		s.GetLogger(),
	)
	svc := NewReconciliationService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		AccountRepo:    cached,
		PlanRepo:       stores.PlanRepo,
		CohortRepo:     stores.CohortRepo,
		EnrollmentRepo: stores.EnrollmentRepo,
		PaymentRepo:    stores.PaymentRepo,
		Gateway:        s.GetGateway(),
	})

	event, raw := subscriptionEvent("pay_008", "acc_1", "plan_basic", types.BillingCycleMonthly)

	stores.AccountRepo.FailNextUpdate = fmt.Errorf("connection reset")
	outcome, err := svc.ProcessEvent(context.Background(), event, raw)
	s.Error(err)
	s.Equal(OutcomeIgnored, outcome)
	s.False(ierr.IsPermanent(err))

	// The rollback must be visible through the cache as well as the store.
	acc, err := cached.Get(context.Background(), "acc_1")
	s.Require().NoError(err)
	s.Empty(acc.PlanID)
	s.Empty(acc.Subscription.LastPaymentID)

	outcome, err = svc.ProcessEvent(context.Background(), event, raw)
	s.NoError(err)
	s.Equal(OutcomeApplied, outcome)

	acc, err = cached.Get(context.Background(), "acc_1")
	s.Require().NoError(err)
	s.Equal("plan_basic", acc.PlanID)
	s.True(acc.Subscription.Active)
}

func (s *ReconciliationServiceSuite) TestSubscriptionApplyIsAtomic() {
	s.GetStores().AccountRepo.FailNextUpdate = fmt.Errorf("connection reset")

	event, raw := subscriptionEvent("pay_007", "acc_1", "plan_basic", types.BillingCycleMonthly)
	outcome, err := s.process(event, raw)
	s.Error(err)
	s.Equal(OutcomeIgnored, outcome)

	// The subscriber-set write that preceded the failed account write must
	// be rolled back with it.
	p, _ := s.GetStores().PlanRepo.Get(context.Background(), "plan_basic")
	s.False(p.HasSubscriber("acc_1"))
}

func (s *ReconciliationServiceSuite) TestCohortUnknownCohortIsPermanent() {
	event, raw := cohortEvent("pay_103", "acc_1", "coh_missing")
	outcome, err := s.process(event, raw)
	s.Error(err)
	s.Equal(OutcomeIgnored, outcome)
	s.True(ierr.IsNotFound(err))
	s.True(ierr.IsPermanent(err))
}

func (s *ReconciliationServiceSuite) TestMissingPaymentIDIsPermanent() {
	event, raw := subscriptionEvent("", "acc_1", "plan_basic", types.BillingCycleMonthly)
	outcome, err := s.process(event, raw)
	s.Error(err)
	s.Equal(OutcomeIgnored, outcome)
	s.True(ierr.IsValidation(err))
}
