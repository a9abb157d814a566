package service

import (
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/domain/account"
	"github.com/cohortly/cohortly/internal/domain/cohort"
	"github.com/cohortly/cohortly/internal/domain/enrollment"
	"github.com/cohortly/cohortly/internal/domain/payment"
	"github.com/cohortly/cohortly/internal/domain/plan"
	"github.com/cohortly/cohortly/internal/integration/razorpay"
	"github.com/cohortly/cohortly/internal/logger"
	"github.com/cohortly/cohortly/internal/types"
)

// ServiceParams bundles the dependencies shared by all services. Services
// embed it and pick what they need.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// DB runs multi-record writes as one atomic unit.
	DB types.TxRunner

	AccountRepo    account.Repository
	PlanRepo       plan.Repository
	CohortRepo     cohort.Repository
	EnrollmentRepo enrollment.Repository
	PaymentRepo    payment.Repository

	Gateway razorpay.Client
}
