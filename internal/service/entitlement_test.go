package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/cohortly/cohortly/internal/domain/account"
	"github.com/cohortly/cohortly/internal/domain/cohort"
	"github.com/cohortly/cohortly/internal/domain/enrollment"
	"github.com/cohortly/cohortly/internal/domain/plan"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/testutil"
	"github.com/cohortly/cohortly/internal/types"
)

type EntitlementServiceSuite struct {
	testutil.BaseServiceTestSuite
	service EntitlementService
}

func TestEntitlementService(t *testing.T) {
	suite.Run(t, new(EntitlementServiceSuite))
}

func (s *EntitlementServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewEntitlementService(ServiceParams{
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
}

func (s *EntitlementServiceSuite) TestGetAccountEntitlements() {
	now := time.Now().UTC()
	stores := s.GetStores()

	stores.PlanRepo.Set("plan_pro", &plan.Plan{ID: "plan_pro", Name: "Pro"})
	stores.CohortRepo.Set("coh_go", &cohort.Cohort{ID: "coh_go", Name: "Go Bootcamp"})
	stores.AccountRepo.Set("acc_1", &account.Account{
		ID:     "acc_1",
		PlanID: "plan_pro",
		Subscription: account.SubscriptionMeta{
			StartAt:      now,
			ExpiryAt:     now.AddDate(0, 1, 0),
			Active:       true,
			BillingCycle: types.BillingCycleMonthly,
		},
		EnrolledCohorts: []string{"coh_go"},
	})
	s.Require().NoError(stores.EnrollmentRepo.Create(context.Background(), &enrollment.Enrollment{
		ID:        "enr_1",
		AccountID: "acc_1",
		CohortID:  "coh_go",
		PaymentID: "pay_101",
		IsPaid:    true,
		Amount:    decimal.NewFromInt(4999),
		Currency:  "INR",
		Status:    types.EnrollmentStatusCompleted,
	}))
	// Unpaid records never surface as entitlements.
	s.Require().NoError(stores.EnrollmentRepo.Create(context.Background(), &enrollment.Enrollment{
		ID:        "enr_2",
		AccountID: "acc_1",
		CohortID:  "coh_go",
		PaymentID: "pay_102",
		IsPaid:    false,
		Status:    types.EnrollmentStatusPending,
	}))

	resp, err := s.service.GetAccountEntitlements(context.Background(), "acc_1")
	s.Require().NoError(err)
	s.Equal("acc_1", resp.AccountID)

	s.Require().NotNil(resp.Subscription)
	s.Equal("plan_pro", resp.Subscription.PlanID)
	s.Equal("Pro", resp.Subscription.PlanName)
	s.True(resp.Subscription.Active)

	s.Require().Len(resp.Enrollments, 1)
	s.Equal("coh_go", resp.Enrollments[0].CohortID)
	s.Equal("Go Bootcamp", resp.Enrollments[0].CohortName)
	s.True(resp.Enrollments[0].Amount.Equal(decimal.NewFromInt(4999)))
}

func (s *EntitlementServiceSuite) TestGetAccountEntitlementsNoPlan() {
	s.GetStores().AccountRepo.Set("acc_1", &account.Account{ID: "acc_1"})

	resp, err := s.service.GetAccountEntitlements(context.Background(), "acc_1")
	s.Require().NoError(err)
	s.Nil(resp.Subscription)
	s.Empty(resp.Enrollments)
}

func (s *EntitlementServiceSuite) TestGetAccountEntitlementsValidation() {
	_, err := s.service.GetAccountEntitlements(context.Background(), "")
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.GetAccountEntitlements(context.Background(), "acc_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *EntitlementServiceSuite) TestExpireOverdueSubscriptions() {
	now := time.Now().UTC()
	stores := s.GetStores()

	stores.AccountRepo.Set("acc_live", &account.Account{
		ID:     "acc_live",
		PlanID: "plan_pro",
		Subscription: account.SubscriptionMeta{
			ExpiryAt: now.AddDate(0, 0, 5),
			Active:   true,
		},
	})
	stores.AccountRepo.Set("acc_overdue", &account.Account{
		ID:     "acc_overdue",
		PlanID: "plan_pro",
		Subscription: account.SubscriptionMeta{
			ExpiryAt: now.AddDate(0, 0, -1),
			Active:   true,
		},
	})

	n, err := s.service.ExpireOverdueSubscriptions(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	overdue, _ := stores.AccountRepo.Get(context.Background(), "acc_overdue")
	s.False(overdue.Subscription.Active)
	s.True(overdue.Subscription.Expired)

	live, _ := stores.AccountRepo.Get(context.Background(), "acc_live")
	s.True(live.Subscription.Active)

	// A second sweep finds nothing left to expire.
	n, err = s.service.ExpireOverdueSubscriptions(context.Background())
	s.Require().NoError(err)
	s.Zero(n)
}
