package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Orders created, by payment method.",
	}, []string{"payment_method"})

	PaymentsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "orders",
		Name:      "payments_confirmed_total",
		Help:      "Orders switched to paid, by payment method.",
	}, []string{"payment_method"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "notify",
		Name:      "sent_total",
		Help:      "Notification deliveries by channel and result.",
	}, []string{"channel", "result"}) // email|push, ok|error

	PushPruned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "notify",
		Name:      "push_subscriptions_pruned_total",
		Help:      "Push subscriptions removed after the endpoint reported gone.",
	})

	GatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "paypal",
		Name:      "calls_total",
		Help:      "Calls to the PayPal REST API.",
	}, []string{"operation", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shop",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

func ObserveRequest(method string, status int, d time.Duration) {
	HTTPDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

func NotificationResult(channel string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	Notifications.WithLabelValues(channel, result).Inc()
}
