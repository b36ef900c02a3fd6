// Package metrics exposes console health over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the console's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	PortfolioValueUsd prometheus.Gauge
	UnrealizedPnlUsd  prometheus.Gauge
	MalformedFields   prometheus.Gauge
	OrdersSubmitted   prometheus.Counter
	OrdersFailed      prometheus.Counter
	RefreshErrors     prometheus.Counter
}

// New builds the collector set.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PortfolioValueUsd: factory.NewGauge(prometheus.GaugeOpts{
			Name: "recallctl_portfolio_value_usd",
			Help: "Current mark-to-market value of all balances.",
		}),
		UnrealizedPnlUsd: factory.NewGauge(prometheus.GaugeOpts{
			Name: "recallctl_unrealized_pnl_usd",
			Help: "Aggregate unrealized PNL over non-stable positions.",
		}),
		MalformedFields: factory.NewGauge(prometheus.GaugeOpts{
			Name: "recallctl_malformed_fields_total",
			Help: "Numeric history fields zeroed by lenient parsing.",
		}),
		OrdersSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "recallctl_orders_submitted_total",
			Help: "Orders submitted to the execution API.",
		}),
		OrdersFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "recallctl_orders_failed_total",
			Help: "Orders that errored or came back unsuccessful.",
		}),
		RefreshErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "recallctl_refresh_errors_total",
			Help: "Dashboard refreshes that failed to fetch API data.",
		}),
	}
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a metrics listener on addr in the background.
func (m *Metrics) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
