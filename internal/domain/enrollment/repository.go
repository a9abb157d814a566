package enrollment

import "context"

// Repository is the enrollment ledger. GetByPaymentID is the idempotency
// lookup; Create participates in the engine's multi-record transaction and
// is additionally backed by a unique index on (account, cohort, payment id).
type Repository interface {
	GetByPaymentID(ctx context.Context, paymentID string) (*Enrollment, error)
	Create(ctx context.Context, e *Enrollment) error
	ListByAccount(ctx context.Context, accountID string) ([]*Enrollment, error)
}
