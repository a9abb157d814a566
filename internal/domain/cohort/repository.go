package cohort

import "context"

// Repository is the cohort directory. The engine mutates a cohort only by
// adding an account to its roster.
type Repository interface {
	Get(ctx context.Context, id string) (*Cohort, error)
	AddToRoster(ctx context.Context, cohortID, accountID string) error
}
