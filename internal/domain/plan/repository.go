package plan

import "context"

// Repository is the plan directory. Plans are created by administrative
// flows; the engine reads them and rewrites only the subscriber set.
type Repository interface {
	Get(ctx context.Context, id string) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
}
