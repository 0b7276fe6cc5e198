package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of messages stored",
		},
	)

	MessagesViewedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_viewed_total",
			Help:      "Total number of successful view-once transitions",
		},
	)

	MessageViewRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_view_rejected_total",
			Help:      "Total number of rejected view attempts by reason",
		},
		[]string{"reason"},
	)

	UnreadListedTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unread_listed_messages",
			Help:      "Number of unread messages returned per list request",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of new-message notifications by result",
		},
		[]string{"driver", "result"},
	)
)
