package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a subscription tier. Prices are whole currency units; discount and
// tax are percentages applied by the pricing calculator.
type Plan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LookupKey   string `json:"lookup_key,omitempty"`
	Description string `json:"description,omitempty"`

	MonthlyPrice    decimal.Decimal `json:"monthly_price"`
	YearlyPrice     decimal.Decimal `json:"yearly_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`

	// Subscribers is the set of account ids currently assigned to this plan.
	// An account id appears in at most one plan's set; the reconciliation
	// engine enforces this, not the store.
	Subscribers []string `json:"subscribers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasSubscriber reports set membership for accountID.
func (p *Plan) HasSubscriber(accountID string) bool {
	for _, id := range p.Subscribers {
		if id == accountID {
			return true
		}
	}
	return false
}
