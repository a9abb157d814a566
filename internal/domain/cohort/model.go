package cohort

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cohort is a purchasable course instance with a roster of enrolled accounts.
type Cohort struct {
	ID          string          `json:"id"`
	CourseID    string          `json:"course_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	StartAt     time.Time       `json:"start_at,omitempty"`

	Roster []string `json:"roster,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMember reports whether accountID is already on the roster.
func (c *Cohort) HasMember(accountID string) bool {
	for _, id := range c.Roster {
		if id == accountID {
			return true
		}
	}
	return false
}
