package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/cohortly/cohortly/internal/domain/account"
	"github.com/cohortly/cohortly/internal/domain/cohort"
	"github.com/cohortly/cohortly/internal/domain/enrollment"
	"github.com/cohortly/cohortly/internal/domain/payment"
	"github.com/cohortly/cohortly/internal/domain/plan"
	ierr "github.com/cohortly/cohortly/internal/errors"
)

func copyAccount(a *account.Account) *account.Account {
	if a == nil {
		return nil
	}
	copied := *a
	copied.EnrolledCohorts = lo.Map(a.EnrolledCohorts, func(s string, _ int) string { return s })
	return &copied
}

func copyPlan(p *plan.Plan) *plan.Plan {
	if p == nil {
		return nil
	}
	copied := *p
	copied.Subscribers = lo.Map(p.Subscribers, func(s string, _ int) string { return s })
	return &copied
}

func copyCohort(c *cohort.Cohort) *cohort.Cohort {
	if c == nil {
		return nil
	}
	copied := *c
	copied.Roster = lo.Map(c.Roster, func(s string, _ int) string { return s })
	return &copied
}

func copyEnrollment(e *enrollment.Enrollment) *enrollment.Enrollment {
	if e == nil {
		return nil
	}
	copied := *e
	return &copied
}

// InMemoryAccountStore implements account.Repository.
type InMemoryAccountStore struct {
	*InMemoryStore[*account.Account]

	// FailNextUpdate makes the next Update return this error once.
	FailNextUpdate error
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{InMemoryStore: NewInMemoryStore[*account.Account]()}
}

func (s *InMemoryAccountStore) Get(_ context.Context, id string) (*account.Account, error) {
	a, ok := s.InMemoryStore.Get(id)
	if !ok {
		return nil, ierr.NewError("account not found").
			WithHint("The referenced account does not exist").
			Mark(ierr.ErrNotFound)
	}
	return copyAccount(a), nil
}

func (s *InMemoryAccountStore) Update(_ context.Context, a *account.Account) error {
	if s.FailNextUpdate != nil {
		err := s.FailNextUpdate
		s.FailNextUpdate = nil
		return err
	}
	if _, ok := s.InMemoryStore.Get(a.ID); !ok {
		return ierr.NewError("account not found").
			WithHint("The referenced account does not exist").
			Mark(ierr.ErrNotFound)
	}
	s.Set(a.ID, copyAccount(a))
	return nil
}

func (s *InMemoryAccountStore) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, a := range s.All() {
		if a.Subscription.Active && !a.Subscription.ExpiryAt.After(now) {
			copied := copyAccount(a)
			copied.Subscription.Active = false
			copied.Subscription.Expired = true
			s.Set(id, copied)
			n++
		}
	}
	return n, nil
}

// InMemoryPlanStore implements plan.Repository.
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{InMemoryStore: NewInMemoryStore[*plan.Plan]()}
}

func (s *InMemoryPlanStore) Get(_ context.Context, id string) (*plan.Plan, error) {
	p, ok := s.InMemoryStore.Get(id)
	if !ok {
		return nil, ierr.NewError("plan not found").
			WithHint("The referenced plan does not exist").
			Mark(ierr.ErrNotFound)
	}
	return copyPlan(p), nil
}

func (s *InMemoryPlanStore) Update(_ context.Context, p *plan.Plan) error {
	if _, ok := s.InMemoryStore.Get(p.ID); !ok {
		return ierr.NewError("plan not found").
			WithHint("The referenced plan does not exist").
			Mark(ierr.ErrNotFound)
	}
	s.Set(p.ID, copyPlan(p))
	return nil
}

// InMemoryCohortStore implements cohort.Repository.
type InMemoryCohortStore struct {
	*InMemoryStore[*cohort.Cohort]

	// FailNextRosterUpdate makes the next AddToRoster return this error once.
	FailNextRosterUpdate error
}

func NewInMemoryCohortStore() *InMemoryCohortStore {
	return &InMemoryCohortStore{InMemoryStore: NewInMemoryStore[*cohort.Cohort]()}
}

func (s *InMemoryCohortStore) Get(_ context.Context, id string) (*cohort.Cohort, error) {
	c, ok := s.InMemoryStore.Get(id)
	if !ok {
		return nil, ierr.NewError("cohort not found").
			WithHint("The referenced cohort does not exist").
			Mark(ierr.ErrNotFound)
	}
	return copyCohort(c), nil
}

func (s *InMemoryCohortStore) AddToRoster(_ context.Context, cohortID, accountID string) error {
	if s.FailNextRosterUpdate != nil {
		err := s.FailNextRosterUpdate
		s.FailNextRosterUpdate = nil
		return err
	}

	c, ok := s.InMemoryStore.Get(cohortID)
	if !ok {
		return ierr.NewError("cohort not found").
			WithHint("The referenced cohort does not exist").
			Mark(ierr.ErrNotFound)
	}

	copied := copyCohort(c)
	if !copied.HasMember(accountID) {
		copied.Roster = append(copied.Roster, accountID)
	}
	s.Set(cohortID, copied)
	return nil
}

// InMemoryEnrollmentStore implements enrollment.Repository with the same
// unique (account, cohort, payment) constraint the real store enforces.
type InMemoryEnrollmentStore struct {
	*InMemoryStore[*enrollment.Enrollment]
}

func NewInMemoryEnrollmentStore() *InMemoryEnrollmentStore {
	return &InMemoryEnrollmentStore{InMemoryStore: NewInMemoryStore[*enrollment.Enrollment]()}
}

func (s *InMemoryEnrollmentStore) GetByPaymentID(_ context.Context, paymentID string) (*enrollment.Enrollment, error) {
	for _, e := range s.All() {
		if e.PaymentID == paymentID {
			return copyEnrollment(e), nil
		}
	}
	return nil, nil
}

func (s *InMemoryEnrollmentStore) Create(_ context.Context, e *enrollment.Enrollment) error {
	for _, existing := range s.All() {
		if existing.AccountID == e.AccountID &&
			existing.CohortID == e.CohortID &&
			existing.PaymentID == e.PaymentID {
			return ierr.NewError("enrollment already exists").
				WithHint("An enrollment for this payment already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.Set(e.ID, copyEnrollment(e))
	return nil
}

// InMemoryPaymentStore implements payment.Repository with the same
// primary-key uniqueness the real ledger enforces.
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{InMemoryStore: NewInMemoryStore[*payment.Payment]()}
}

func (s *InMemoryPaymentStore) Get(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := s.InMemoryStore.Get(id)
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *InMemoryPaymentStore) Create(_ context.Context, p *payment.Payment) error {
	if _, ok := s.InMemoryStore.Get(p.ID); ok {
		return ierr.NewError("payment already processed").
			WithHint("This payment has already been processed").
			Mark(ierr.ErrAlreadyExists)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	copied := *p
	s.Set(p.ID, &copied)
	return nil
}

func (s *InMemoryEnrollmentStore) ListByAccount(_ context.Context, accountID string) ([]*enrollment.Enrollment, error) {
	var result []*enrollment.Enrollment
	for _, e := range s.All() {
		if e.AccountID == accountID {
			result = append(result, copyEnrollment(e))
		}
	}
	return result, nil
}
