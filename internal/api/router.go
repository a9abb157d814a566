package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/cohortly/cohortly/internal/api/v1"
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/logger"
	"github.com/cohortly/cohortly/internal/rest/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Checkout    *v1.CheckoutHandler
	Webhook     *v1.WebhookHandler
	Entitlement *v1.EntitlementHandler
	Health      *v1.HealthHandler
}

// NewRouter assembles the gin engine with the standard middleware chain.
func NewRouter(h Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = log.GetGinLogger()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandlerMiddleware(log),
	)

	router.GET("/health", h.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The gateway posts here; no auth beyond the signature itself.
	router.POST("/webhooks/razorpay", h.Webhook.HandleRazorpayWebhook)

	apiV1 := router.Group("/v1")
	{
		apiV1.POST("/checkout/subscription", h.Checkout.CreateSubscriptionCheckout)
		apiV1.POST("/checkout/cohort", h.Checkout.CreateCohortCheckout)
		apiV1.GET("/accounts/:id/entitlements", h.Entitlement.GetAccountEntitlements)
		apiV1.GET("/plans/:id", h.Entitlement.GetPlan)
		apiV1.GET("/cohorts/:id", h.Entitlement.GetCohort)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return router
}
