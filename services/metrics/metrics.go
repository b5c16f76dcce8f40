package metricsvc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sarvodaya/feedesk/core"
)

const namespace = "feedesk"

// Metrics holds the application collectors, on a registry of their own.
type Metrics struct {
	registry          *prometheus.Registry
	paymentsRecorded  prometheus.Counter
	amountCollected   prometheus.Counter
	notificationsSent prometheus.Counter
	requests          *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		paymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Number of fee payments recorded.",
		}),
		amountCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "amount_collected_total",
			Help:      "Sum of the recorded payments' totals.",
		}),
		notificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Number of payment notifications handed to the notifier.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of API requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
	}
	m.registry.MustRegister(
		m.paymentsRecorded,
		m.amountCollected,
		m.notificationsSent,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) PaymentRecorded(amount int) {
	m.paymentsRecorded.Inc()
	m.amountCollected.Add(float64(amount))
}

func (m *Metrics) RequestServed(method, route, code string) {
	m.requests.WithLabelValues(method, route, code).Inc()
}

type notifier struct {
	next    core.Notifier
	counter prometheus.Counter
}

// Notifier wraps next, counting the notifications sent through it.
func (m *Metrics) Notifier(next core.Notifier) core.Notifier {
	return &notifier{next: next, counter: m.notificationsSent}
}

func (n *notifier) SendNotification(mobile, message string) {
	n.counter.Inc()
	n.next.SendNotification(mobile, message)
}
