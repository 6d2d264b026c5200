package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics counts the pipeline's observable outcomes.
type CheckoutMetrics struct {
	SessionsOpened     prometheus.Counter
	OrdersMaterialized prometheus.Counter
	MaterializeFailed  *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	opened := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "sessions_opened_total",
		Help:      "Payment sessions successfully opened.",
	})
	materialized := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "orders_materialized_total",
		Help:      "Orders created from confirmed payment sessions.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "materialize_failures_total",
		Help:      "Failed materializations by error kind.",
	}, []string{"kind"})

	reg.MustRegister(opened, materialized, failed)
	return &CheckoutMetrics{
		SessionsOpened:     opened,
		OrdersMaterialized: materialized,
		MaterializeFailed:  failed,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
