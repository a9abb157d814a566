package types

import "context"

// CollectionName represents a MongoDB collection name.
type CollectionName string

const (
	CollectionAccounts    CollectionName = "accounts"
	CollectionPlans       CollectionName = "plans"
	CollectionCohorts     CollectionName = "cohorts"
	CollectionEnrollments CollectionName = "enrollments"
	CollectionPayments    CollectionName = "payments"
)

// TxRunner executes fn inside a single multi-document transaction. Every
// repository call made through the ctx passed to fn commits or aborts as one
// unit; fn returning an error aborts with zero partial writes.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
