package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cohortly/cohortly/internal/api/dto"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/logger"
	"github.com/cohortly/cohortly/internal/metrics"
	"github.com/cohortly/cohortly/internal/service"
	"github.com/cohortly/cohortly/internal/types"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	log             *logger.Logger
}

func NewCheckoutHandler(checkoutService service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		log:             log,
	}
}

// CreateSubscriptionCheckout handles POST /v1/checkout/subscription.
func (h *CheckoutHandler) CreateSubscriptionCheckout(c *gin.Context) {
	var req dto.CreateSubscriptionCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.checkoutService.CreateSubscriptionCheckout(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.CheckoutSessions.WithLabelValues(string(types.CheckoutKindSubscription)).Inc()
	c.JSON(http.StatusOK, resp)
}

// CreateCohortCheckout handles POST /v1/checkout/cohort.
func (h *CheckoutHandler) CreateCohortCheckout(c *gin.Context) {
	var req dto.CreateCohortCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.checkoutService.CreateCohortCheckout(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.CheckoutSessions.WithLabelValues(string(types.CheckoutKindCohort)).Inc()
	c.JSON(http.StatusOK, resp)
}
