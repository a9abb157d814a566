package razorpay

import (
	"context"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/cohortly/cohortly/internal/config"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/logger"
)

// Client is the outbound surface to the payment gateway. Only order creation
// is needed here; everything after redirect happens on the gateway's side and
// comes back through the webhook.
type Client interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error)
	KeyID() string
}

// CreateOrderRequest carries the server-computed amount and the metadata the
// gateway echoes back on completion.
type CreateOrderRequest struct {
	// AmountMinor is the charge in minor currency units (paise).
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]interface{}
}

// Order is the opaque session handle the client redirects with.
type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
	Status      string
}

type client struct {
	rz     *razorpay.Client
	keyID  string
	logger *logger.Logger
}

// NewClient creates a Razorpay API client from configuration.
func NewClient(cfg *config.Configuration, log *logger.Logger) Client {
	return &client{
		rz:     razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
		keyID:  cfg.Razorpay.KeyID,
		logger: log,
	}
}

// KeyID returns the public key id the frontend needs for the hosted checkout.
func (c *client) KeyID() string {
	return c.keyID
}

func (c *client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if req.AmountMinor <= 0 {
		return nil, ierr.NewError("order amount must be positive").
			WithHint("Computed amount is invalid").
			Mark(ierr.ErrValidation)
	}

	data := map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    req.Notes,
	}

	c.logger.Infow("creating razorpay order",
		"amount_minor", req.AmountMinor,
		"currency", req.Currency,
		"receipt", req.Receipt)

	body, err := c.rz.Order.Create(data, nil)
	if err != nil {
		c.logger.Errorw("razorpay order creation failed",
			"receipt", req.Receipt,
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("Payment gateway rejected the order").
			Mark(ierr.ErrGateway)
	}

	orderID, _ := body["id"].(string)
	if orderID == "" {
		return nil, ierr.NewError("gateway response missing order id").
			WithHint("Payment gateway returned an unexpected response").
			Mark(ierr.ErrGateway)
	}

	order := &Order{
		ID:          orderID,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
	}
	if status, ok := body["status"].(string); ok {
		order.Status = status
	}

	c.logger.Infow("created razorpay order",
		"order_id", order.ID,
		"amount_minor", order.AmountMinor)

	return order, nil
}
