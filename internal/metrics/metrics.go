// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records GraphQL, catalog and live feed metrics.
type Collector struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	products    prometheus.Gauge
	users       prometheus.Gauge
	liveClients prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopgraph_graphql_operations_total",
			Help: "GraphQL resolver calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopgraph_graphql_operation_duration_seconds",
			Help:    "GraphQL resolver latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shopgraph_catalog_products",
			Help: "Number of products in the catalog.",
		}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shopgraph_catalog_users",
			Help: "Number of registered users.",
		}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shopgraph_live_clients",
			Help: "Number of connected live feed clients.",
		}),
	}

	reg.MustRegister(
		c.operations,
		c.duration,
		c.products,
		c.users,
		c.liveClients,
	)

	return c
}

// RecordOperation records one resolver call.
func (c *Collector) RecordOperation(operation, outcome string, duration time.Duration) {
	c.operations.WithLabelValues(operation, outcome).Inc()
	c.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetCatalogCounts sets the catalog size gauges.
func (c *Collector) SetCatalogCounts(users, products int) {
	c.users.Set(float64(users))
	c.products.Set(float64(products))
}

// SetLiveClients sets the number of connected live feed clients.
func (c *Collector) SetLiveClients(n int) {
	c.liveClients.Set(float64(n))
}

// Handler returns an HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
