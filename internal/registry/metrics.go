package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var (
	reloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainindexer_registry_reloads_total",
			Help: "Total number of contract registry reloads by outcome",
		},
		[]string{"outcome"},
	)

	notifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainindexer_registry_notifications_total",
			Help: "Total number of registry update notifications received",
		},
	)

	subscriptions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainindexer_registry_subscriptions_total",
			Help: "Total number of successful (re)subscriptions to the registry update channel",
		},
	)
)

func ReloadOutcomeInc(outcome string) {
	reloads.WithLabelValues(outcome).Inc()
}

func NotificationInc() {
	notifications.Inc()
}

func SubscriptionInc() {
	subscriptions.Inc()
}
