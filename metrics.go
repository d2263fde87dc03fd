package main

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics holds the service's prometheus instruments.
type OrderMetrics struct {
	ordersCreated   prometheus.Counter
	ordersDeleted   prometheus.Counter
	statusUpdates   prometheus.Counter
	enrichmentCalls *prometheus.CounterVec
}

func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		statusUpdates: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_status_updates_total",
			Help: "Total number of order status updates applied",
		}),
		enrichmentCalls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_enrichment_calls_total",
			Help: "Total number of downstream enrichment calls by target and outcome",
		}, []string{"target", "outcome"}),
	}
}

func (m *OrderMetrics) OrderCreated() {
	m.ordersCreated.Inc()
}

func (m *OrderMetrics) OrdersDeleted(count int64) {
	m.ordersDeleted.Add(float64(count))
}

func (m *OrderMetrics) StatusUpdated() {
	m.statusUpdates.Inc()
}

func (m *OrderMetrics) EnrichmentCall(target string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.enrichmentCalls.WithLabelValues(target, outcome).Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}
