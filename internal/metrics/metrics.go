package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts inbound gateway notifications by event kind and
	// processing result (applied, duplicate, ignored, rejected, failed).
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cohortly",
		Subsystem: "webhook",
		Name:      "events_total",
		Help:      "Inbound payment webhook events by kind and result.",
	}, []string{"event", "result"})

	// CheckoutSessions counts gateway sessions created by checkout kind.
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cohortly",
		Subsystem: "checkout",
		Name:      "sessions_total",
		Help:      "Checkout sessions created by kind.",
	}, []string{"kind"})

	// SubscriptionsExpired counts accounts flipped to expired by the sweep.
	SubscriptionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cohortly",
		Subsystem: "subscription",
		Name:      "expired_total",
		Help:      "Subscriptions marked expired by the periodic sweep.",
	})
)
