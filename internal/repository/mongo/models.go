package mongo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cohortly/cohortly/internal/domain/account"
	"github.com/cohortly/cohortly/internal/domain/cohort"
	"github.com/cohortly/cohortly/internal/domain/enrollment"
	"github.com/cohortly/cohortly/internal/domain/payment"
	"github.com/cohortly/cohortly/internal/domain/plan"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

// Persistence models. Decimal amounts are stored as strings to keep exact
// values across the BSON boundary.

type subscriptionMetaModel struct {
	StartAt       time.Time `bson:"start_at,omitempty"`
	ExpiryAt      time.Time `bson:"expiry_at,omitempty"`
	Active        bool      `bson:"active"`
	Expired       bool      `bson:"expired"`
	BillingCycle  string    `bson:"billing_cycle,omitempty"`
	LastPaymentID string    `bson:"last_payment_id,omitempty"`
}

type accountModel struct {
	ID              string                `bson:"_id"`
	Email           string                `bson:"email"`
	Name            string                `bson:"name"`
	Role            string                `bson:"role"`
	PlanID          string                `bson:"plan_id,omitempty"`
	Subscription    subscriptionMetaModel `bson:"subscription"`
	EnrolledCohorts []string              `bson:"enrolled_cohorts,omitempty"`
	CreatedAt       time.Time             `bson:"created_at"`
	UpdatedAt       time.Time             `bson:"updated_at"`
}

type planModel struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	LookupKey       string    `bson:"lookup_key,omitempty"`
	Description     string    `bson:"description,omitempty"`
	MonthlyPrice    string    `bson:"monthly_price"`
	YearlyPrice     string    `bson:"yearly_price"`
	DiscountPercent string    `bson:"discount_percent"`
	TaxPercent      string    `bson:"tax_percent"`
	Subscribers     []string  `bson:"subscribers,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type cohortModel struct {
	ID          string    `bson:"_id"`
	CourseID    string    `bson:"course_id,omitempty"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	Price       string    `bson:"price"`
	StartAt     time.Time `bson:"start_at,omitempty"`
	Roster      []string  `bson:"roster,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type enrollmentModel struct {
	ID            string    `bson:"_id"`
	AccountID     string    `bson:"account_id"`
	CohortID      string    `bson:"cohort_id"`
	PaymentID     string    `bson:"payment_id"`
	OrderID       string    `bson:"order_id,omitempty"`
	PaymentMethod string    `bson:"payment_method,omitempty"`
	IsPaid        bool      `bson:"is_paid"`
	Amount        string    `bson:"amount"`
	Currency      string    `bson:"currency"`
	Status        string    `bson:"status"`
	RawPayload    []byte    `bson:"raw_payload,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

type paymentModel struct {
	ID           string    `bson:"_id"`
	AccountID    string    `bson:"account_id"`
	PlanID       string    `bson:"plan_id"`
	OrderID      string    `bson:"order_id,omitempty"`
	BillingCycle string    `bson:"billing_cycle"`
	CreatedAt    time.Time `bson:"created_at"`
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHintf("Stored %s is not a valid decimal", field).
			Mark(ierr.ErrDatabase)
	}
	return d, nil
}

func toAccountModel(a *account.Account) *accountModel {
	return &accountModel{
		ID:     a.ID,
		Email:  a.Email,
		Name:   a.Name,
		Role:   string(a.Role),
		PlanID: a.PlanID,
		Subscription: subscriptionMetaModel{
			StartAt:       a.Subscription.StartAt,
			ExpiryAt:      a.Subscription.ExpiryAt,
			Active:        a.Subscription.Active,
			Expired:       a.Subscription.Expired,
			BillingCycle:  string(a.Subscription.BillingCycle),
			LastPaymentID: a.Subscription.LastPaymentID,
		},
		EnrolledCohorts: a.EnrolledCohorts,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func fromAccountModel(m *accountModel) *account.Account {
	return &account.Account{
		ID:     m.ID,
		Email:  m.Email,
		Name:   m.Name,
		Role:   types.AccountRole(m.Role),
		PlanID: m.PlanID,
		Subscription: account.SubscriptionMeta{
			StartAt:       m.Subscription.StartAt,
			ExpiryAt:      m.Subscription.ExpiryAt,
			Active:        m.Subscription.Active,
			Expired:       m.Subscription.Expired,
			BillingCycle:  types.BillingCycle(m.Subscription.BillingCycle),
			LastPaymentID: m.Subscription.LastPaymentID,
		},
		EnrolledCohorts: m.EnrolledCohorts,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toPlanModel(p *plan.Plan) *planModel {
	return &planModel{
		ID:              p.ID,
		Name:            p.Name,
		LookupKey:       p.LookupKey,
		Description:     p.Description,
		MonthlyPrice:    p.MonthlyPrice.String(),
		YearlyPrice:     p.YearlyPrice.String(),
		DiscountPercent: p.DiscountPercent.String(),
		TaxPercent:      p.TaxPercent.String(),
		Subscribers:     p.Subscribers,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func fromPlanModel(m *planModel) (*plan.Plan, error) {
	monthly, err := parseAmount("monthly_price", m.MonthlyPrice)
	if err != nil {
		return nil, err
	}
	yearly, err := parseAmount("yearly_price", m.YearlyPrice)
	if err != nil {
		return nil, err
	}
	discount, err := parseAmount("discount_percent", m.DiscountPercent)
	if err != nil {
		return nil, err
	}
	tax, err := parseAmount("tax_percent", m.TaxPercent)
	if err != nil {
		return nil, err
	}

	return &plan.Plan{
		ID:              m.ID,
		Name:            m.Name,
		LookupKey:       m.LookupKey,
		Description:     m.Description,
		MonthlyPrice:    monthly,
		YearlyPrice:     yearly,
		DiscountPercent: discount,
		TaxPercent:      tax,
		Subscribers:     m.Subscribers,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

func fromCohortModel(m *cohortModel) (*cohort.Cohort, error) {
	price, err := parseAmount("price", m.Price)
	if err != nil {
		return nil, err
	}

	return &cohort.Cohort{
		ID:          m.ID,
		CourseID:    m.CourseID,
		Name:        m.Name,
		Description: m.Description,
		Price:       price,
		StartAt:     m.StartAt,
		Roster:      m.Roster,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:           p.ID,
		AccountID:    p.AccountID,
		PlanID:       p.PlanID,
		OrderID:      p.OrderID,
		BillingCycle: string(p.BillingCycle),
		CreatedAt:    p.CreatedAt,
	}
}

func fromPaymentModel(m *paymentModel) *payment.Payment {
	return &payment.Payment{
		ID:           m.ID,
		AccountID:    m.AccountID,
		PlanID:       m.PlanID,
		OrderID:      m.OrderID,
		BillingCycle: types.BillingCycle(m.BillingCycle),
		CreatedAt:    m.CreatedAt,
	}
}

func toEnrollmentModel(e *enrollment.Enrollment) *enrollmentModel {
	return &enrollmentModel{
		ID:            e.ID,
		AccountID:     e.AccountID,
		CohortID:      e.CohortID,
		PaymentID:     e.PaymentID,
		OrderID:       e.OrderID,
		PaymentMethod: e.PaymentMethod,
		IsPaid:        e.IsPaid,
		Amount:        e.Amount.String(),
		Currency:      e.Currency,
		Status:        string(e.Status),
		RawPayload:    e.RawPayload,
		CreatedAt:     e.CreatedAt,
	}
}

func fromEnrollmentModel(m *enrollmentModel) (*enrollment.Enrollment, error) {
	amount, err := parseAmount("amount", m.Amount)
	if err != nil {
		return nil, err
	}

	return &enrollment.Enrollment{
		ID:            m.ID,
		AccountID:     m.AccountID,
		CohortID:      m.CohortID,
		PaymentID:     m.PaymentID,
		OrderID:       m.OrderID,
		PaymentMethod: m.PaymentMethod,
		IsPaid:        m.IsPaid,
		Amount:        amount,
		Currency:      m.Currency,
		Status:        types.EnrollmentStatus(m.Status),
		RawPayload:    m.RawPayload,
		CreatedAt:     m.CreatedAt,
	}, nil
}
