// Package metrics holds the Prometheus instrumentation for the trading loop.
//
// Exposed series:
//   - grid_bot_ticks_total: polling ticks executed
//   - grid_bot_ticks_skipped_total: ticker fires coalesced while a tick was in flight
//   - grid_bot_price_fetch_failures_total: ticks that ended at the price fetch
//   - grid_bot_current_price: last polled price (gauge)
//   - grid_bot_orders_total{mode,side}: orders accepted by the venue
//   - grid_bot_order_failures_total{kind}: per-level order failures by error kind
//
// Registered in init() and served from the /metrics endpoint mounted in cmd/bot.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grid_bot_ticks_total",
			Help: "Polling ticks executed",
		},
	)

	TicksSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grid_bot_ticks_skipped_total",
			Help: "Scheduled ticks skipped because the previous tick was still running",
		},
	)

	PriceFetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grid_bot_price_fetch_failures_total",
			Help: "Ticks aborted because the price fetch failed",
		},
	)

	CurrentPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "grid_bot_current_price",
			Help: "Last polled market price",
		},
	)

	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_bot_orders_total",
			Help: "Orders accepted by the venue",
		},
		[]string{"mode", "side"}, // mode: live|simulation, side: buy|sell
	)

	OrderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_bot_order_failures_total",
			Help: "Per-level order failures by error kind",
		},
		[]string{"kind"}, // kind: network|venue|auth|internal
	)
)

func init() {
	prometheus.MustRegister(
		Ticks,
		TicksSkipped,
		PriceFetchFailures,
		CurrentPrice,
		Orders,
		OrderFailures,
	)
}
