package payment

import "context"

// Repository is the processed-payments ledger. Get is the idempotency lookup;
// Create participates in the engine's transaction and the primary key doubles
// as the backstop against concurrent deliveries of the same payment.
type Repository interface {
	// Get returns nil, nil when the payment has not been recorded.
	Get(ctx context.Context, id string) (*Payment, error)
	Create(ctx context.Context, p *Payment) error
}
