package testutil

import (
	"context"
	"fmt"

	"github.com/cohortly/cohortly/internal/integration/razorpay"
)

// FakeGateway implements razorpay.Client, recording order requests so tests
// can assert on the amount and metadata sent to the gateway.
type FakeGateway struct {
	Orders      []*razorpay.CreateOrderRequest
	FailNext    error
	orderSerial int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (g *FakeGateway) KeyID() string {
	return "rzp_test_key"
}

func (g *FakeGateway) CreateOrder(_ context.Context, req *razorpay.CreateOrderRequest) (*razorpay.Order, error) {
	if g.FailNext != nil {
		err := g.FailNext
		g.FailNext = nil
		return nil, err
	}

	g.Orders = append(g.Orders, req)
	g.orderSerial++

	return &razorpay.Order{
		ID:          fmt.Sprintf("order_test_%03d", g.orderSerial),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Status:      "created",
	}, nil
}

// LastOrder returns the most recent order request, or nil.
func (g *FakeGateway) LastOrder() *razorpay.CreateOrderRequest {
	if len(g.Orders) == 0 {
		return nil
	}
	return g.Orders[len(g.Orders)-1]
}
