package testutil

import "context"

type savable interface {
	save() func()
}

// InMemoryTxRunner implements types.TxRunner over the in-memory stores:
// every registered store is snapshotted before fn runs and restored if fn
// fails, giving tests real all-or-nothing semantics.
type InMemoryTxRunner struct {
	stores []savable
}

func NewInMemoryTxRunner(stores ...savable) *InMemoryTxRunner {
	return &InMemoryTxRunner{stores: stores}
}

func (r *InMemoryTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	restores := make([]func(), 0, len(r.stores))
	for _, s := range r.stores {
		restores = append(restores, s.save())
	}

	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
