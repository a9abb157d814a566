package service

import (
	"context"
	"time"

	"github.com/cohortly/cohortly/internal/api/dto"
	ierr "github.com/cohortly/cohortly/internal/errors"
)

// EntitlementService is the read side of the entitlement store, plus the
// periodic sweep that keeps the active flag honest between payments.
type EntitlementService interface {
	GetAccountEntitlements(ctx context.Context, accountID string) (*dto.AccountEntitlementsResponse, error)
	ExpireOverdueSubscriptions(ctx context.Context) (int64, error)
}

type entitlementService struct {
	ServiceParams
}

func NewEntitlementService(params ServiceParams) EntitlementService {
	return &entitlementService{ServiceParams: params}
}

func (s *entitlementService) GetAccountEntitlements(ctx context.Context, accountID string) (*dto.AccountEntitlementsResponse, error) {
	if accountID == "" {
		return nil, ierr.NewError("account ID is required").
			WithHint("Please provide a valid account ID").
			Mark(ierr.ErrValidation)
	}

	acc, err := s.AccountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resp := &dto.AccountEntitlementsResponse{
		AccountID:   acc.ID,
		Enrollments: []dto.EnrollmentResponse{},
	}

	if acc.PlanID != "" {
		p, err := s.PlanRepo.Get(ctx, acc.PlanID)
		if err != nil && !ierr.IsNotFound(err) {
			return nil, err
		}
		resp.Subscription = dto.NewSubscriptionResponse(acc, p)
	}

	records, err := s.EnrollmentRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	for _, e := range records {
		if !e.IsPaid {
			continue
		}
		c, err := s.CohortRepo.Get(ctx, e.CohortID)
		if err != nil && !ierr.IsNotFound(err) {
			return nil, err
		}
		resp.Enrollments = append(resp.Enrollments, dto.NewEnrollmentResponse(e, c))
	}

	return resp, nil
}

func (s *entitlementService) ExpireOverdueSubscriptions(ctx context.Context) (int64, error) {
	n, err := s.AccountRepo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Infow("expired overdue subscriptions", "count", n)
	}
	return n, nil
}
