package service

import (
	"context"
	"fmt"

	"github.com/cohortly/cohortly/internal/api/dto"
	"github.com/cohortly/cohortly/internal/integration/razorpay"
	"github.com/cohortly/cohortly/internal/types"
)

// CheckoutService builds gateway payment sessions. It is read-only with
// respect to entitlement state: the charge is always computed server-side
// from the authoritative plan or cohort record, never taken from the client.
type CheckoutService interface {
	CreateSubscriptionCheckout(ctx context.Context, req dto.CreateSubscriptionCheckoutRequest) (*dto.CheckoutSessionResponse, error)
	CreateCohortCheckout(ctx context.Context, req dto.CreateCohortCheckoutRequest) (*dto.CheckoutSessionResponse, error)
}

type checkoutService struct {
	ServiceParams
}

func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{ServiceParams: params}
}

func (s *checkoutService) CreateSubscriptionCheckout(ctx context.Context, req dto.CreateSubscriptionCheckoutRequest) (*dto.CheckoutSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.AccountRepo.Get(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	plan, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	amount := AmountDue(plan, req.BillingCycle)
	description := fmt.Sprintf("%s plan (%s)", plan.Name, req.BillingCycle)

	metadata := &types.CheckoutMetadata{
		Kind:         types.CheckoutKindSubscription,
		AccountID:    account.ID,
		PlanID:       plan.ID,
		BillingCycle: req.BillingCycle,
		Description:  description,
	}

	order, err := s.Gateway.CreateOrder(ctx, &razorpay.CreateOrderRequest{
		AmountMinor: ToMinorUnits(amount),
		Currency:    types.DefaultCurrency,
		Receipt:     fmt.Sprintf("sub_%s_%s", account.ID, plan.ID),
		Notes:       metadata.ToNotes(),
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created subscription checkout session",
		"order_id", order.ID,
		"account_id", account.ID,
		"plan_id", plan.ID,
		"billing_cycle", req.BillingCycle,
		"amount_minor", order.AmountMinor)

	return &dto.CheckoutSessionResponse{
		OrderID:     order.ID,
		AmountMinor: order.AmountMinor,
		Currency:    order.Currency,
		KeyID:       s.Gateway.KeyID(),
		Description: description,
	}, nil
}

func (s *checkoutService) CreateCohortCheckout(ctx context.Context, req dto.CreateCohortCheckoutRequest) (*dto.CheckoutSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.AccountRepo.Get(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	cohort, err := s.CohortRepo.Get(ctx, req.CohortID)
	if err != nil {
		return nil, err
	}

	amount := CohortAmountDue(cohort.Price)
	description := fmt.Sprintf("Enrollment: %s", cohort.Name)

	metadata := &types.CheckoutMetadata{
		Kind:        types.CheckoutKindCohort,
		AccountID:   account.ID,
		CohortID:    cohort.ID,
		Description: description,
	}

	order, err := s.Gateway.CreateOrder(ctx, &razorpay.CreateOrderRequest{
		AmountMinor: ToMinorUnits(amount),
		Currency:    types.DefaultCurrency,
		Receipt:     fmt.Sprintf("coh_%s_%s", account.ID, cohort.ID),
		Notes:       metadata.ToNotes(),
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created cohort checkout session",
		"order_id", order.ID,
		"account_id", account.ID,
		"cohort_id", cohort.ID,
		"amount_minor", order.AmountMinor)

	return &dto.CheckoutSessionResponse{
		OrderID:     order.ID,
		AmountMinor: order.AmountMinor,
		Currency:    order.Currency,
		KeyID:       s.Gateway.KeyID(),
		Description: description,
	}, nil
}
