package testutil

import (
	"github.com/stretchr/testify/suite"

	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/logger"
)

// Stores bundles the in-memory repositories used by service tests.
type Stores struct {
	AccountRepo    *InMemoryAccountStore
	PlanRepo       *InMemoryPlanStore
	CohortRepo     *InMemoryCohortStore
	EnrollmentRepo *InMemoryEnrollmentStore
	PaymentRepo    *InMemoryPaymentStore
}

// BaseServiceTestSuite wires fresh in-memory stores, a transaction runner
// and a fake gateway for every test.
type BaseServiceTestSuite struct {
	suite.Suite

	cfg     *config.Configuration
	log     *logger.Logger
	stores  Stores
	db      *InMemoryTxRunner
	gateway *FakeGateway
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.cfg = config.GetDefaultConfig()
	s.log = logger.GetLogger()

	s.stores = Stores{
		AccountRepo:    NewInMemoryAccountStore(),
		PlanRepo:       NewInMemoryPlanStore(),
		CohortRepo:     NewInMemoryCohortStore(),
		EnrollmentRepo: NewInMemoryEnrollmentStore(),
		PaymentRepo:    NewInMemoryPaymentStore(),
	}
	s.db = NewInMemoryTxRunner(
		s.stores.AccountRepo,
		s.stores.PlanRepo,
		s.stores.CohortRepo,
		s.stores.EnrollmentRepo,
		s.stores.PaymentRepo,
	)
	s.gateway = NewFakeGateway()
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration { return s.cfg }
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger        { return s.log }
func (s *BaseServiceTestSuite) GetStores() Stores                { return s.stores }
func (s *BaseServiceTestSuite) GetDB() *InMemoryTxRunner         { return s.db }
func (s *BaseServiceTestSuite) GetGateway() *FakeGateway         { return s.gateway }
