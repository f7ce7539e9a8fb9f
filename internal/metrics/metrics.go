// Package metrics defines the Prometheus collectors exported by dockdeck.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zorak1103/dockdeck/internal/engine"
	"github.com/zorak1103/dockdeck/internal/operation"
	"github.com/zorak1103/dockdeck/internal/relay"
)

const Namespace = "dockdeck"

var OperationsMetric = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "operations_total",
	Help:      "Executed container operations by kind and result.",
}, []string{"kind", "result"})

var SubscriptionsActiveMetric = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: Namespace,
	Name:      "log_subscriptions_active",
	Help:      "Currently running log subscriptions.",
})

var LogChunksMetric = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "log_chunks_total",
	Help:      "Log chunks delivered to subscribers.",
})

var LogStreamErrorsMetric = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "log_stream_errors_total",
	Help:      "Log streams that failed to open or broke off.",
})

var WarningsMetric = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "log_warnings_total",
	Help:      "Warnings and errors written to the log.",
})

func init() {
	prometheus.MustRegister(
		OperationsMetric,
		SubscriptionsActiveMetric,
		LogChunksMetric,
		LogStreamErrorsMetric,
		WarningsMetric,
	)
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// OperationObserver counts dispatcher outcomes.
type OperationObserver struct{}

var _ operation.Observer = OperationObserver{}

// ObserveOperation implements operation.Observer.
func (OperationObserver) ObserveOperation(_ context.Context, req operation.Request, outcome operation.Outcome) {
	OperationsMetric.WithLabelValues(req.Kind.String(), resultLabel(outcome.Success)).Inc()
}

// RelayObserver tracks log subscriptions.
type RelayObserver struct{}

var _ relay.Observer = RelayObserver{}

// SubscriptionOpened implements relay.Observer.
func (RelayObserver) SubscriptionOpened() {
	SubscriptionsActiveMetric.Inc()
}

// ChunkDelivered implements relay.Observer.
func (RelayObserver) ChunkDelivered(engine.LogChunk) {
	LogChunksMetric.Inc()
}

// SubscriptionClosed implements relay.Observer.
func (RelayObserver) SubscriptionClosed(_ relay.State, err error) {
	SubscriptionsActiveMetric.Dec()
	if err != nil {
		LogStreamErrorsMetric.Inc()
	}
}
