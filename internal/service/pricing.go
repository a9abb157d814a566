package service

import (
	"github.com/shopspring/decimal"

	"github.com/cohortly/cohortly/internal/domain/plan"
	"github.com/cohortly/cohortly/internal/types"
)

var percentBase = decimal.NewFromInt(100)

// AmountDue computes the exact chargeable amount for one billing period of a
// plan, in whole currency units:
//
//	base     = yearly or monthly price per cycle
//	taxable  = base - base*discount/100
//	total    = round(taxable + taxable*tax/100)
//
// Only the final total is rounded, to the nearest whole currency unit.
// Deterministic, no side effects.
func AmountDue(p *plan.Plan, cycle types.BillingCycle) decimal.Decimal {
	base := p.MonthlyPrice
	if cycle == types.BillingCycleYearly {
		base = p.YearlyPrice
	}
	return applyDiscountAndTax(base, p.DiscountPercent, p.TaxPercent)
}

// CohortAmountDue computes the one-time charge for a cohort purchase. Cohort
// prices are flat; rounding matches AmountDue.
func CohortAmountDue(price decimal.Decimal) decimal.Decimal {
	return price.Round(0)
}

// ToMinorUnits converts a whole-unit amount to the gateway's minor units.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(types.MinorUnitFactor)).Round(0).IntPart()
}

func applyDiscountAndTax(base, discountPercent, taxPercent decimal.Decimal) decimal.Decimal {
	discount := base.Mul(discountPercent).Div(percentBase)
	taxable := base.Sub(discount)
	tax := taxable.Mul(taxPercent).Div(percentBase)
	return taxable.Add(tax).Round(0)
}
