package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotificationsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "messaging",
		Name:      "notifications_added_total",
		Help:      "Notifications stored, by type.",
	}, []string{"type"})

	PushDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "messaging",
		Name:      "push_delivered_total",
		Help:      "System notifications handed to the delivery surface.",
	})

	PushSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "messaging",
		Name:      "push_skipped_total",
		Help:      "System notifications not delivered, by reason.",
	}, []string{"reason"})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "messaging",
		Name:      "chat_messages_sent_total",
		Help:      "Chat messages appended.",
	})
)

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
