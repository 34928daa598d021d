// Package metrics exposes Prometheus counters for the swag store
// backend and a standalone metrics server that serves them on a
// separate listener from the API.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// InstancesCreated counts newly provisioned instances. Deduplicated
	// create requests do not increment it.
	InstancesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swagstore",
		Name:      "instances_created_total",
		Help:      "Number of new instances provisioned.",
	})

	// OrdersReceived counts successfully appended orders.
	OrdersReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swagstore",
		Name:      "orders_received_total",
		Help:      "Number of orders accepted into the order log.",
	})

	// DeployFailures counts background deployments that ended in error.
	DeployFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swagstore",
		Name:      "deploy_failures_total",
		Help:      "Number of instance deployments that failed.",
	})

	// WebhookFailures counts order notifications that could not be
	// delivered to the configured webhook sink.
	WebhookFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swagstore",
		Name:      "webhook_failures_total",
		Help:      "Number of order webhook deliveries that failed.",
	})

	// ExpiredInstancesSwept counts instances removed by the expiry sweep.
	ExpiredInstancesSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swagstore",
		Name:      "expired_instances_swept_total",
		Help:      "Number of expired instances removed by the cleanup sweep.",
	})
)

// MetricsServer serves the Prometheus scrape endpoint.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on listenAddr. The name is
// recorded as a constant label on the process build info.
func New(name, listenAddr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:    listenAddr,
			Handler: mux,
		},
	}, nil
}

// ListenAndServe blocks serving the scrape endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
