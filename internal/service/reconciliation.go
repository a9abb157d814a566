package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cohortly/cohortly/internal/api/dto"
	"github.com/cohortly/cohortly/internal/domain/account"
	"github.com/cohortly/cohortly/internal/domain/enrollment"
	"github.com/cohortly/cohortly/internal/domain/payment"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

// SubscriptionState classifies an (account, plan) pair at the moment a
// completed-payment event arrives.
type SubscriptionState string

const (
	// StateNoAssignment: no plan, or an inactive/expired one.
	StateNoAssignment SubscriptionState = "no_assignment"
	// StateSamePlanActive: the event's target plan is already active.
	StateSamePlanActive SubscriptionState = "same_plan_active"
	// StateOtherPlanActive: a different plan is active.
	StateOtherPlanActive SubscriptionState = "other_plan_active"
)

// Outcome reports what applying an event did.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// ReconciliationService turns a verified payment notification into an
// idempotent entitlement change. Errors marked permanent (validation,
// missing references) must be acknowledged to the gateway, not retried;
// everything else aborts atomically and should be retried.
type ReconciliationService interface {
	ProcessEvent(ctx context.Context, event *dto.WebhookEvent, raw []byte) (Outcome, error)
}

type reconciliationService struct {
	ServiceParams
}

func NewReconciliationService(params ServiceParams) ReconciliationService {
	return &reconciliationService{ServiceParams: params}
}

func (s *reconciliationService) ProcessEvent(ctx context.Context, event *dto.WebhookEvent, raw []byte) (Outcome, error) {
	if !event.IsCheckoutCompleted() {
		s.Logger.Infow("ignoring webhook event of irrelevant kind", "event", event.Event)
		return OutcomeIgnored, nil
	}

	payment := event.Payload.Payment.Entity
	if payment.ID == "" {
		return OutcomeIgnored, ierr.NewError("completed-payment event carries no payment id").
			WithHint("Webhook body has an unexpected shape").
			Mark(ierr.ErrValidation)
	}

	meta, err := event.CheckoutMetadata()
	if err != nil {
		return OutcomeIgnored, err
	}

	log := s.Logger.With(
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
		"account_id", meta.AccountID,
		"checkout_kind", meta.Kind,
	)

	var outcome Outcome
	switch meta.Kind {
	case types.CheckoutKindSubscription:
		err = s.DB.WithTransaction(ctx, func(ctx context.Context) error {
			var txErr error
			outcome, txErr = s.applySubscription(ctx, &payment, meta)
			return txErr
		})
	case types.CheckoutKindCohort:
		err = s.DB.WithTransaction(ctx, func(ctx context.Context) error {
			var txErr error
			outcome, txErr = s.applyCohort(ctx, &payment, meta, raw)
			return txErr
		})
	}

	if err != nil {
		log.Errorw("reconciliation failed", "error", err)
		return OutcomeIgnored, err
	}

	log.Infow("reconciliation complete", "outcome", outcome)
	return outcome, nil
}

// applySubscription runs the subscription state machine for one verified
// payment. Must be called inside a transaction.
func (s *reconciliationService) applySubscription(ctx context.Context, pay *dto.PaymentEntity, meta *types.CheckoutMetadata) (Outcome, error) {
	// Idempotency guard: the processed-payments ledger remembers every
	// applied payment, so a redelivery is a no-op even when other payments
	// have landed since it was first applied.
	processed, err := s.PaymentRepo.Get(ctx, pay.ID)
	if err != nil {
		return OutcomeIgnored, err
	}
	if processed != nil {
		s.Logger.Infow("duplicate subscription payment delivery, no-op",
			"payment_id", pay.ID,
			"account_id", processed.AccountID)
		return OutcomeDuplicate, nil
	}

	acc, err := s.AccountRepo.Get(ctx, meta.AccountID)
	if err != nil {
		return OutcomeIgnored, err
	}

	target, err := s.PlanRepo.Get(ctx, meta.PlanID)
	if err != nil {
		return OutcomeIgnored, err
	}

	now := time.Now().UTC()
	state := classifySubscription(acc, target.ID, now)

	var expiry time.Time
	switch state {
	case StateSamePlanActive:
		// Renewal keeps unused time: new expiry = now + period + remainder.
		remaining := acc.Subscription.ExpiryAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		expiry = meta.BillingCycle.Period(now).Add(remaining)

	case StateOtherPlanActive:
		// Switching forfeits remaining time. Drop membership in the old
		// plan first; a deleted old plan just means nothing to remove.
		old, err := s.PlanRepo.Get(ctx, acc.PlanID)
		if err != nil {
			if !ierr.IsNotFound(err) {
				return OutcomeIgnored, err
			}
			s.Logger.Warnw("previous plan no longer exists, skipping removal",
				"plan_id", acc.PlanID,
				"account_id", acc.ID)
		} else if old.HasSubscriber(acc.ID) {
			old.Subscribers = lo.Without(old.Subscribers, acc.ID)
			if err := s.PlanRepo.Update(ctx, old); err != nil {
				return OutcomeIgnored, err
			}
		}
		expiry = meta.BillingCycle.Period(now)

	default: // StateNoAssignment
		expiry = meta.BillingCycle.Period(now)
	}

	// Record the payment first so the ledger's primary key catches a
	// concurrent delivery before any entitlement write lands.
	if err := s.PaymentRepo.Create(ctx, &payment.Payment{
		ID:           pay.ID,
		AccountID:    acc.ID,
		PlanID:       target.ID,
		OrderID:      pay.OrderID,
		BillingCycle: meta.BillingCycle,
	}); err != nil {
		if ierr.IsAlreadyExists(err) {
			s.Logger.Infow("concurrent duplicate subscription payment, no-op",
				"payment_id", pay.ID)
			return OutcomeDuplicate, nil
		}
		return OutcomeIgnored, err
	}

	acc.PlanID = target.ID
	acc.Subscription = account.SubscriptionMeta{
		StartAt:       now,
		ExpiryAt:      expiry,
		Active:        true,
		Expired:       false,
		BillingCycle:  meta.BillingCycle,
		LastPaymentID: pay.ID,
	}

	if !target.HasSubscriber(acc.ID) {
		target.Subscribers = append(target.Subscribers, acc.ID)
		if err := s.PlanRepo.Update(ctx, target); err != nil {
			return OutcomeIgnored, err
		}
	}

	if err := s.AccountRepo.Update(ctx, acc); err != nil {
		return OutcomeIgnored, err
	}

	s.Logger.Infow("subscription entitlement applied",
		"account_id", acc.ID,
		"plan_id", target.ID,
		"state", state,
		"expiry_at", expiry)

	return OutcomeApplied, nil
}

// applyCohort creates the enrollment record, adds the account to the cohort
// roster and records the cohort on the account, as one atomic unit. Must be
// called inside a transaction.
func (s *reconciliationService) applyCohort(ctx context.Context, payment *dto.PaymentEntity, meta *types.CheckoutMetadata, raw []byte) (Outcome, error) {
	existing, err := s.EnrollmentRepo.GetByPaymentID(ctx, payment.ID)
	if err != nil {
		return OutcomeIgnored, err
	}
	if existing != nil && existing.IsPaid {
		s.Logger.Infow("duplicate cohort payment delivery, no-op",
			"payment_id", payment.ID,
			"cohort_id", existing.CohortID)
		return OutcomeDuplicate, nil
	}

	coh, err := s.CohortRepo.Get(ctx, meta.CohortID)
	if err != nil {
		return OutcomeIgnored, err
	}

	acc, err := s.AccountRepo.Get(ctx, meta.AccountID)
	if err != nil {
		return OutcomeIgnored, err
	}

	amount := decimal.NewFromInt(payment.AmountMinor).
		Div(decimal.NewFromInt(types.MinorUnitFactor))

	record := &enrollment.Enrollment{
		ID:            types.GenerateID(types.IDPrefixEnrollment),
		AccountID:     acc.ID,
		CohortID:      coh.ID,
		PaymentID:     payment.ID,
		OrderID:       payment.OrderID,
		PaymentMethod: payment.Method,
		IsPaid:        true,
		Amount:        amount,
		Currency:      payment.Currency,
		Status:        types.EnrollmentStatusCompleted,
		RawPayload:    json.RawMessage(raw),
	}

	if err := s.EnrollmentRepo.Create(ctx, record); err != nil {
		// The unique index caught a concurrent duplicate of this event.
		if ierr.IsAlreadyExists(err) {
			s.Logger.Infow("concurrent duplicate cohort payment, no-op",
				"payment_id", payment.ID)
			return OutcomeDuplicate, nil
		}
		return OutcomeIgnored, err
	}

	if err := s.CohortRepo.AddToRoster(ctx, coh.ID, acc.ID); err != nil {
		return OutcomeIgnored, err
	}

	if !acc.IsEnrolled(coh.ID) {
		acc.EnrolledCohorts = append(acc.EnrolledCohorts, coh.ID)
		if err := s.AccountRepo.Update(ctx, acc); err != nil {
			return OutcomeIgnored, err
		}
	}

	s.Logger.Infow("cohort enrollment applied",
		"account_id", acc.ID,
		"cohort_id", coh.ID,
		"enrollment_id", record.ID)

	return OutcomeApplied, nil
}

// classifySubscription decides which state-machine branch applies.
func classifySubscription(a *account.Account, targetPlanID string, now time.Time) SubscriptionState {
	if !a.HasActiveSubscription(now) {
		return StateNoAssignment
	}
	if a.PlanID == targetPlanID {
		return StateSamePlanActive
	}
	return StateOtherPlanActive
}
