package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the process metrics exposed on /metrics.
type Registry struct {
	reg            *prometheus.Registry
	EmailsSent     *prometheus.CounterVec
	SendLatencySec *prometheus.HistogramVec
	OrdersQueued   prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_emails_total",
		Help: "Order notification sends by recipient and outcome.",
	}, []string{"recipient", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_email_send_seconds",
		Help:    "Time spent in the mail transport per send.",
		Buckets: prometheus.DefBuckets,
	}, []string{"recipient"})
	queued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_emails_queued_total",
		Help: "Orders enqueued for asynchronous notification.",
	})

	r.MustRegister(sent, latency, queued)
	return &Registry{
		reg:            r,
		EmailsSent:     sent,
		SendLatencySec: latency,
		OrdersQueued:   queued,
	}
}

func (r *Registry) ObserveSend(recipient, outcome string, took time.Duration) {
	r.EmailsSent.WithLabelValues(recipient, outcome).Inc()
	r.SendLatencySec.WithLabelValues(recipient).Observe(took.Seconds())
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
