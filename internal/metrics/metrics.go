package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stackpulse",
			Name:      "events_processed_total",
			Help:      "Total number of chain events parsed and processed",
		},
		[]string{"category"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stackpulse",
			Name:      "notifications_sent_total",
			Help:      "Total number of notification dispatch attempts",
		},
		[]string{"channel", "status"},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stackpulse",
			Name:      "webhook_deliveries_total",
			Help:      "Total number of chainhook deliveries received",
		},
		[]string{"hook", "status"},
	)

	RollbackBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stackpulse",
			Name:      "rollback_blocks_total",
			Help:      "Total number of rolled-back blocks received in deliveries",
		},
		[]string{"hook"},
	)
)
